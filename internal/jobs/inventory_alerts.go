package jobs

import (
	"context"

	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
)

// LowStockSource lists catalog items at or below the low stock threshold.
type LowStockSource interface {
	LowStockAlerts(ctx context.Context) ([]*models.InventoryItem, error)
}

type InventoryAlertService struct {
	source LowStockSource
}

type InventoryAlert struct {
	ItemID       string
	ItemName     string
	Category     string
	CurrentStock int
	Threshold    int
	Type         models.AlertType
}

func NewInventoryAlertService(source LowStockSource) *InventoryAlertService {
	return &InventoryAlertService{source: source}
}

func (a *InventoryAlertService) CheckLowStock(ctx context.Context) ([]InventoryAlert, error) {
	items, err := a.source.LowStockAlerts(ctx)
	if err != nil {
		return nil, err
	}

	alerts := make([]InventoryAlert, 0, len(items))
	for _, item := range items {
		if item.Stock > models.LowStockThreshold {
			continue
		}
		alertType := models.AlertTypeLowStock
		if item.Stock <= 0 {
			alertType = models.AlertTypeOutOfStock
		}
		alerts = append(alerts, InventoryAlert{
			ItemID:       item.ID,
			ItemName:     item.Name,
			Category:     item.Category,
			CurrentStock: item.Stock,
			Threshold:    models.LowStockThreshold,
			Type:         alertType,
		})
	}
	return alerts, nil
}

func (a *InventoryAlertService) LogLowStockAlerts(alerts []InventoryAlert) {
	log := logger.WithComponent("inventory-alerts")
	if len(alerts) == 0 {
		log.Debug().Msg("no low stock items")
		return
	}
	for _, alert := range alerts {
		log.Warn().
			Str("item_id", alert.ItemID).
			Str("item", alert.ItemName).
			Str("category", alert.Category).
			Int("stock", alert.CurrentStock).
			Int("threshold", alert.Threshold).
			Str("type", string(alert.Type)).
			Msg("low stock")
	}
}

// ScheduledLowStockCheck runs every 30 minutes from the scheduler.
func (a *InventoryAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		log := logger.WithComponent("inventory-alerts")
		log.Error().Err(err).Msg("low stock check failed")
		return err
	}
	a.LogLowStockAlerts(alerts)
	return nil
}
