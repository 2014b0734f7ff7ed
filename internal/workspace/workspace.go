package workspace

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"invoiceflow/internal/models"

	"github.com/google/uuid"
	"github.com/rs/xid"
)

// PendingSale is the working line list of one kind.
type PendingSale struct {
	Kind     Kind                `json:"kind"`
	Number   string              `json:"number"`
	Date     string              `json:"date"`
	Lines    []models.LineItem   `json:"lines"`
	Buyer    models.BuyerAddress `json:"buyer"`
	SaleDate string              `json:"saleDate,omitempty"`
}

// Result describes a successful stock mutation. Affected holds the updated
// catalog items that need to be written through to the store.
type Result struct {
	Line     *models.LineItem       `json:"line,omitempty"`
	Affected []models.InventoryItem `json:"affected"`
	Notices  []models.Notice        `json:"notices,omitempty"`
}

type pending struct {
	lines    []models.LineItem
	buyer    models.BuyerAddress
	saleDate string
}

// Workspace owns the canonical inventory and both pending sales. Every
// mutation validates, mutates and computes notices under one lock, so for
// each item stock + reserved quantity stays constant across line moves.
type Workspace struct {
	mu       sync.RWMutex
	items    map[string]*models.InventoryItem
	pending  map[Kind]*pending
	counters map[Kind]int
	frozen   map[Kind]bool
	loc      *time.Location
	now      func() time.Time
	lineID   func() string
}

// Option customizes a Workspace.
type Option func(*Workspace)

// WithLocation sets the zone used for derived document dates.
func WithLocation(loc *time.Location) Option {
	return func(w *Workspace) { w.loc = loc }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// WithLineIDs overrides the line identifier generator.
func WithLineIDs(gen func() string) Option {
	return func(w *Workspace) { w.lineID = gen }
}

// New creates an empty workspace with both counters at 1.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		items:    make(map[string]*models.InventoryItem),
		pending:  map[Kind]*pending{KindInvoice: {}, KindDirectSale: {}},
		counters: map[Kind]int{KindInvoice: 1, KindDirectSale: 1},
		frozen:   make(map[Kind]bool),
		loc:      time.UTC,
		now:      time.Now,
		lineID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewItemID returns a sortable time+random identifier for a catalog item.
func NewItemID() string {
	return xid.New().String()
}

func (w *Workspace) sale(kind Kind) (*pending, error) {
	p, ok := w.pending[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return p, nil
}

// mutable is sale for operations that change the pending sale. It refuses
// while a finalize of kind is between BeginFinalize and its commit or abort.
func (w *Workspace) mutable(kind Kind) (*pending, error) {
	p, err := w.sale(kind)
	if err != nil {
		return nil, err
	}
	if w.frozen[kind] {
		return nil, fmt.Errorf("%w: %s", ErrFinalizing, kind)
	}
	return p, nil
}

// AddLine reserves qty units of an item into the pending sale of kind. The
// line for the same item is merged when present.
func (w *Workspace) AddLine(kind Kind, itemID string, qty int) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, err := w.mutable(kind)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	item, ok := w.items[itemID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if qty > item.Stock {
		return nil, fmt.Errorf("%w: %d requested, %d available for %s", ErrInsufficientStock, qty, item.Stock, item.Name)
	}

	var line *models.LineItem
	for i := range p.lines {
		if p.lines[i].ItemID == itemID {
			line = &p.lines[i]
			break
		}
	}
	if line != nil {
		line.Quantity += qty
		line.Recompute()
	} else {
		p.lines = append(p.lines, models.LineItem{
			LineID:      w.lineID(),
			ItemID:      item.ID,
			Name:        item.Name,
			Category:    item.Category,
			Price:       item.Price,
			BuyingPrice: item.BuyingPrice,
			Quantity:    qty,
			HSNSAC:      item.HSNSAC,
			GSTRate:     item.GSTRate,
		})
		line = &p.lines[len(p.lines)-1]
		line.Recompute()
	}

	item.Stock -= qty
	item.UpdatedAt = w.now()

	out := *line
	return &Result{
		Line:     &out,
		Affected: []models.InventoryItem{*item},
		Notices:  StockNotices(item),
	}, nil
}

// RemoveLine drops a line and restores its quantity to stock.
func (w *Workspace) RemoveLine(kind Kind, lineID string) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, err := w.mutable(kind)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range p.lines {
		if p.lines[i].LineID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
	}

	line := p.lines[idx]
	res := &Result{Line: &line}
	if item := w.restore(line); item != nil {
		res.Affected = append(res.Affected, *item)
	}
	p.lines = append(p.lines[:idx], p.lines[idx+1:]...)
	return res, nil
}

// Clear restores every line of the pending sale and empties it.
func (w *Workspace) Clear(kind Kind) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, err := w.mutable(kind)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	seen := make(map[string]int)
	for _, line := range p.lines {
		item := w.restore(line)
		if item == nil {
			continue
		}
		if i, ok := seen[item.ID]; ok {
			res.Affected[i] = *item
			continue
		}
		seen[item.ID] = len(res.Affected)
		res.Affected = append(res.Affected, *item)
	}
	p.lines = nil
	return res, nil
}

// restore puts a line's quantity back. Lines whose item was removed from the
// catalog restore nothing. Caller holds the lock.
func (w *Workspace) restore(line models.LineItem) *models.InventoryItem {
	item, ok := w.items[line.ItemID]
	if !ok {
		return nil
	}
	item.Stock += line.Quantity
	item.UpdatedAt = w.now()
	return item
}

// Pending returns a copy of the pending sale with its derived number and date.
func (w *Workspace) Pending(kind Kind) (*PendingSale, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pendingLocked(kind)
}

func (w *Workspace) pendingLocked(kind Kind) (*PendingSale, error) {
	p, err := w.sale(kind)
	if err != nil {
		return nil, err
	}
	return &PendingSale{
		Kind:     kind,
		Number:   kind.DocumentNumber(w.counters[kind]),
		Date:     w.now().In(w.loc).Format("2006-01-02"),
		Lines:    append([]models.LineItem{}, p.lines...),
		Buyer:    p.buyer,
		SaleDate: p.saleDate,
	}, nil
}

// SetBuyer sets the bill-to block of the pending invoice.
func (w *Workspace) SetBuyer(buyer models.BuyerAddress) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.mutable(KindInvoice)
	if err != nil {
		return err
	}
	p.buyer = buyer
	return nil
}

// SetSaleDate sets the date of the pending direct sale.
func (w *Workspace) SetSaleDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("sale date must be YYYY-MM-DD: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.mutable(KindDirectSale)
	if err != nil {
		return err
	}
	p.saleDate = date
	return nil
}

// BeginFinalize snapshots the pending sale of kind together with its
// counter and freezes the sale: line, buyer and sale date changes fail with
// ErrFinalizing until CommitFinalize or AbortFinalize.
func (w *Workspace) BeginFinalize(kind Kind) (*PendingSale, int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.mutable(kind); err != nil {
		return nil, 0, err
	}
	snap, err := w.pendingLocked(kind)
	if err != nil {
		return nil, 0, err
	}
	w.frozen[kind] = true
	return snap, w.counters[kind], nil
}

// CommitFinalize empties the frozen sale without restoring stock (the goods
// are sold), moves the counter of kind to next and unfreezes it.
func (w *Workspace) CommitFinalize(kind Kind, next int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, err := w.sale(kind)
	if err != nil {
		return err
	}
	if !w.frozen[kind] {
		return fmt.Errorf("commit %s: finalize not started", kind)
	}
	p.lines = nil
	if kind == KindDirectSale {
		p.saleDate = ""
	}
	if next > w.counters[kind] {
		w.counters[kind] = next
	}
	delete(w.frozen, kind)
	return nil
}

// AbortFinalize unfreezes kind and leaves the pending sale as it was.
func (w *Workspace) AbortFinalize(kind Kind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.frozen, kind)
}

// Counter returns the number the next document of kind will use.
func (w *Workspace) Counter(kind Kind) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.counters[kind]
}

// SetCounter overwrites the counter of kind. Values below 1 are raised to 1.
func (w *Workspace) SetCounter(kind Kind, n int) {
	if n < 1 {
		n = 1
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counters[kind] = n
}

// AdvanceCounter moves the counter of kind forward by one and returns the new value.
func (w *Workspace) AdvanceCounter(kind Kind) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counters[kind]++
	return w.counters[kind]
}

// Reserved is the total quantity of an item held across both pending sales.
func (w *Workspace) Reserved(itemID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reservedLocked(itemID)
}

// Item returns a copy of a catalog item.
func (w *Workspace) Item(id string) (models.InventoryItem, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	item, ok := w.items[id]
	if !ok {
		return models.InventoryItem{}, false
	}
	return *item, true
}

// Inventory lists the catalog ordered by id, which is creation order for xid ids.
func (w *Workspace) Inventory(filter *models.InventorySearchFilter) []models.InventoryItem {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]models.InventoryItem, 0, len(w.items))
	for _, item := range w.items {
		if filter != nil && !matches(item, filter) {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matches(item *models.InventoryItem, f *models.InventorySearchFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(item.Name), q) &&
			!strings.Contains(strings.ToLower(item.Category), q) {
			return false
		}
	}
	if f.Category != "" && !strings.EqualFold(item.Category, f.Category) {
		return false
	}
	if f.Status != "" && item.StockStatus() != f.Status {
		return false
	}
	return true
}

// AddItem inserts a new catalog item, assigning an id when empty.
func (w *Workspace) AddItem(item models.InventoryItem) (models.InventoryItem, error) {
	if item.Stock < 0 {
		return models.InventoryItem{}, ErrNegativeStock
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if item.ID == "" {
		item.ID = NewItemID()
	}
	if _, exists := w.items[item.ID]; exists {
		return models.InventoryItem{}, fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
	}
	now := w.now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	w.items[item.ID] = &item
	return item, nil
}

// UpdateItem replaces the editable fields of an existing item. Stock is set
// as given; quantities already reserved by pending lines are not touched.
func (w *Workspace) UpdateItem(item models.InventoryItem) (models.InventoryItem, error) {
	if item.Stock < 0 {
		return models.InventoryItem{}, ErrNegativeStock
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	cur, ok := w.items[item.ID]
	if !ok {
		return models.InventoryItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
	}
	item.CreatedAt = cur.CreatedAt
	item.UpdatedAt = w.now()
	*cur = item
	return item, nil
}

// AdjustStock applies a signed delta to an item's stock.
func (w *Workspace) AdjustStock(id string, delta int) (models.InventoryItem, []models.Notice, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	item, ok := w.items[id]
	if !ok {
		return models.InventoryItem{}, nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if item.Stock+delta < 0 {
		return models.InventoryItem{}, nil, fmt.Errorf("%w: %d in stock, delta %d", ErrNegativeStock, item.Stock, delta)
	}
	item.Stock += delta
	item.UpdatedAt = w.now()
	return *item, StockNotices(item), nil
}

// RemoveItem deletes a catalog item that no pending line references.
func (w *Workspace) RemoveItem(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if w.reservedLocked(id) > 0 {
		return fmt.Errorf("%w: %s", ErrItemReserved, id)
	}
	delete(w.items, id)
	return nil
}

// ReplaceInventory swaps the catalog for an imported one and sets the invoice
// counter. Both pending sales are emptied without restoring their stock,
// since their items may not exist in the new catalog. It returns the number
// of lines dropped.
func (w *Workspace) ReplaceInventory(items []*models.InventoryItem, invoiceCounter int) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = make(map[string]*models.InventoryItem, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		cp := *it
		if cp.ID == "" {
			cp.ID = NewItemID()
		}
		w.items[cp.ID] = &cp
	}
	if invoiceCounter < 1 {
		invoiceCounter = 1
	}
	w.counters[KindInvoice] = invoiceCounter
	dropped := 0
	for _, p := range w.pending {
		dropped += len(p.lines)
		p.lines = nil
	}
	return dropped
}

// StockNotices returns the out-of-stock or low-stock warning for an item's
// current level, if any.
func StockNotices(item *models.InventoryItem) []models.Notice {
	switch {
	case item.Stock == 0:
		return []models.Notice{{
			Level:   models.NoticeWarning,
			Type:    models.AlertTypeOutOfStock,
			Message: fmt.Sprintf("%s is now out of stock", item.Name),
		}}
	case item.Stock > 0 && item.Stock <= models.LowStockThreshold:
		return []models.Notice{{
			Level:   models.NoticeWarning,
			Type:    models.AlertTypeLowStock,
			Message: fmt.Sprintf("Low stock: only %d left of %s", item.Stock, item.Name),
		}}
	}
	return nil
}
