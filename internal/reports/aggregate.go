package reports

import (
	"sort"
	"time"

	"invoiceflow/internal/billing"
	"invoiceflow/internal/models"

	"github.com/shopspring/decimal"
)

// Bucket key layouts
const (
	DailyKey   = "2006-01-02"
	MonthlyKey = "Jan 2006"
)

// Granularity of emitted points
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
)

// Point is one chart bucket.
type Point struct {
	Date   string  `json:"date"`
	Profit float64 `json:"profit"`
	Loss   float64 `json:"loss"`
}

// Summary reduces all points of a report.
type Summary struct {
	TotalProfit float64 `json:"totalProfit"`
	TotalLoss   float64 `json:"totalLoss"`
	Net         float64 `json:"net"`
}

// Report is the profit/loss series for one window.
type Report struct {
	Window      Window      `json:"window"`
	Range       Range       `json:"range"`
	Granularity Granularity `json:"granularity"`
	Points      []Point     `json:"points"`
	Summary     Summary     `json:"summary"`
	Empty       bool        `json:"empty"`
	GeneratedAt time.Time   `json:"generatedAt"`
}

type bucket struct {
	at     time.Time
	profit decimal.Decimal
	loss   decimal.Decimal
}

// Aggregate buckets records within rng by day, or by month when the range
// spans more than 90 days. Positive profits add to profit, negative ones to
// loss as absolute values. Points are sorted chronologically; no points
// are emitted when nothing matches.
func Aggregate(records []models.SalesRecord, rng Range, loc *time.Location) ([]Point, Granularity) {
	if loc == nil {
		loc = time.UTC
	}
	gran, layout := Daily, DailyKey
	if rng.Monthly() {
		gran, layout = Monthly, MonthlyKey
	}

	buckets := make(map[string]*bucket)
	for _, r := range records {
		d, ok := ParseSaleDate(r.SaleDate, loc)
		if !ok || !rng.Contains(d) {
			continue
		}
		at := d
		if gran == Monthly {
			at = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, loc)
		}
		key := at.Format(layout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{at: at, profit: decimal.Zero, loss: decimal.Zero}
			buckets[key] = b
		}
		p := billing.Amount(r.TotalProfit)
		switch {
		case p.IsPositive():
			b.profit = b.profit.Add(p)
		case p.IsNegative():
			b.loss = b.loss.Sub(p)
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return buckets[keys[i]].at.Before(buckets[keys[j]].at) })

	points := make([]Point, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		points = append(points, Point{
			Date:   k,
			Profit: b.profit.InexactFloat64(),
			Loss:   b.loss.InexactFloat64(),
		})
	}
	return points, gran
}

// Summarize totals the points.
func Summarize(points []Point) Summary {
	profit, loss := decimal.Zero, decimal.Zero
	for _, p := range points {
		profit = profit.Add(billing.Amount(p.Profit))
		loss = loss.Add(billing.Amount(p.Loss))
	}
	return Summary{
		TotalProfit: profit.InexactFloat64(),
		TotalLoss:   loss.InexactFloat64(),
		Net:         profit.Sub(loss).InexactFloat64(),
	}
}

// Build resolves the window and aggregates records into a report.
func Build(records []models.SalesRecord, q Query, now time.Time, loc *time.Location) (*Report, error) {
	rng, err := Bounds(q, now, loc, records)
	if err != nil {
		return nil, err
	}
	points, gran := Aggregate(records, rng, loc)
	return &Report{
		Window:      q.Window,
		Range:       rng,
		Granularity: gran,
		Points:      points,
		Summary:     Summarize(points),
		Empty:       len(points) == 0,
		GeneratedAt: now,
	}, nil
}
