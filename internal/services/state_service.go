package services

import (
	"context"

	"invoiceflow/internal/caching"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/repositories"
	"invoiceflow/internal/workspace"
)

// StateService owns the workspace and mirrors it to redis and Postgres.
type StateService interface {
	Workspace() *workspace.Workspace
	// Bootstrap restores pending sales from the redis snapshot, then loads the
	// catalog and counters from Postgres.
	Bootstrap(ctx context.Context) error
	// Persist writes the snapshot and the stock of the affected items. Failures
	// are logged and never undo the in-memory mutation.
	Persist(ctx context.Context, affected []models.InventoryItem)
	SaveSnapshot(ctx context.Context)
}

type stateService struct {
	ws            *workspace.Workspace
	cacheService  caching.CacheService
	inventoryRepo repositories.InventoryRepository
	settingsRepo  repositories.SettingsRepository
}

func NewStateService(ws *workspace.Workspace, cacheService caching.CacheService, inventoryRepo repositories.InventoryRepository, settingsRepo repositories.SettingsRepository) StateService {
	return &stateService{
		ws:            ws,
		cacheService:  cacheService,
		inventoryRepo: inventoryRepo,
		settingsRepo:  settingsRepo,
	}
}

func (s *stateService) Workspace() *workspace.Workspace {
	return s.ws
}

func (s *stateService) Bootstrap(ctx context.Context) error {
	log := logger.WithComponent("state")

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}

	snap, err := s.cacheService.LoadWorkspace(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("workspace snapshot unavailable, starting with empty pending sales")
		snap = nil
	}
	if snap != nil {
		s.ws.Hydrate(snap)
	} else {
		if err := s.ws.SetBuyer(settings.BuyerAddress); err != nil {
			return err
		}
	}

	items, err := s.inventoryRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	s.ws.LoadInventory(items)

	// the stored counter wins unless the snapshot is ahead of it
	s.ws.SetCounter(workspace.KindInvoice, max(settings.InvoiceCounter, s.ws.Counter(workspace.KindInvoice)))
	s.ws.SetCounter(workspace.KindDirectSale, max(settings.DirectSaleCounter, s.ws.Counter(workspace.KindDirectSale)))

	log.Info().
		Int("items", len(items)).
		Int("invoice_counter", s.ws.Counter(workspace.KindInvoice)).
		Int("direct_sale_counter", s.ws.Counter(workspace.KindDirectSale)).
		Bool("snapshot", snap != nil).
		Msg("workspace ready")

	s.SaveSnapshot(ctx)
	return nil
}

func (s *stateService) Persist(ctx context.Context, affected []models.InventoryItem) {
	ctx = context.WithoutCancel(ctx)
	s.SaveSnapshot(ctx)

	log := logger.WithComponent("state")
	for _, item := range affected {
		if err := s.inventoryRepo.UpdateStock(ctx, item.ID, item.Stock); err != nil {
			log.Error().Err(err).Str("item_id", item.ID).Int("stock", item.Stock).Msg("stock write-through failed")
		}
	}
}

func (s *stateService) SaveSnapshot(ctx context.Context) {
	if err := s.cacheService.SaveWorkspace(context.WithoutCancel(ctx), s.ws.Snapshot()); err != nil {
		log := logger.WithComponent("state")
		log.Error().Err(err).Msg("workspace snapshot write failed")
	}
}
