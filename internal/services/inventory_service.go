package services

import (
	"context"
	"errors"
	"fmt"

	"invoiceflow/internal/common"
	"invoiceflow/internal/enrichment"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/repositories"
	"invoiceflow/internal/workspace"
)

// ItemInput is a create or full-update request for a catalog item.
type ItemInput struct {
	Item                models.InventoryItem
	GenerateDescription bool
}

// ItemResult carries the stored item and any notices raised along the way.
type ItemResult struct {
	Item    models.InventoryItemView `json:"item"`
	Notices []models.Notice          `json:"notices,omitempty"`
}

type InventoryService interface {
	List(ctx context.Context, filter *models.InventorySearchFilter) []models.InventoryItemView
	Get(ctx context.Context, id string) (*models.InventoryItemView, error)
	Create(ctx context.Context, input ItemInput) (*ItemResult, error)
	Update(ctx context.Context, id string, input ItemInput) (*ItemResult, error)
	AdjustStock(ctx context.Context, id string, delta int) (*ItemResult, error)
	Delete(ctx context.Context, id string) error
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*models.InventoryItem, error)
	LowStockAlerts(ctx context.Context) ([]*models.InventoryItem, error)
	Describe(ctx context.Context, in enrichment.Input) (string, error)
}

type inventoryService struct {
	state         StateService
	inventoryRepo repositories.InventoryRepository
	generator     enrichment.Generator
	guard         *common.InflightGuard
}

func NewInventoryService(state StateService, inventoryRepo repositories.InventoryRepository, generator enrichment.Generator, guard *common.InflightGuard) InventoryService {
	return &inventoryService{
		state:         state,
		inventoryRepo: inventoryRepo,
		generator:     generator,
		guard:         guard,
	}
}

func (s *inventoryService) List(ctx context.Context, filter *models.InventorySearchFilter) []models.InventoryItemView {
	items := s.state.Workspace().Inventory(filter)
	views := make([]models.InventoryItemView, 0, len(items))
	for i := range items {
		views = append(views, models.NewInventoryItemView(&items[i]))
	}
	return views
}

func (s *inventoryService) Get(ctx context.Context, id string) (*models.InventoryItemView, error) {
	item, ok := s.state.Workspace().Item(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", workspace.ErrItemNotFound, id)
	}
	view := models.NewInventoryItemView(&item)
	return &view, nil
}

// enrich fills the description when asked. A failure becomes a notice and
// leaves the description as it was.
func (s *inventoryService) enrich(ctx context.Context, item *models.InventoryItem, want bool) []models.Notice {
	if !want {
		return nil
	}
	desc, err := s.Describe(ctx, enrichment.Input{Category: item.Category, ItemName: item.Name, Price: item.Price})
	if err != nil {
		return []models.Notice{{Level: models.NoticeError, Message: enrichment.ErrGenerationFailed.Error()}}
	}
	item.Description = desc
	return []models.Notice{{Level: models.NoticeSuccess, Message: "Description generated"}}
}

func (s *inventoryService) Create(ctx context.Context, input ItemInput) (*ItemResult, error) {
	item := input.Item
	if item.Stock < 0 {
		return nil, workspace.ErrNegativeStock
	}
	if item.ID == "" {
		item.ID = workspace.NewItemID()
	} else if _, exists := s.state.Workspace().Item(item.ID); exists {
		return nil, fmt.Errorf("%w: %s", workspace.ErrDuplicateItem, item.ID)
	}
	notices := s.enrich(ctx, &item, input.GenerateDescription)

	// store first so a failed write leaves the catalog untouched
	if err := s.inventoryRepo.Upsert(ctx, &item); err != nil {
		return nil, fmt.Errorf("store item: %w", err)
	}
	stored, err := s.state.Workspace().AddItem(item)
	if err != nil {
		return nil, err
	}
	s.state.SaveSnapshot(ctx)

	view := models.NewInventoryItemView(&stored)
	return &ItemResult{Item: view, Notices: append(notices, workspace.StockNotices(&stored)...)}, nil
}

func (s *inventoryService) Update(ctx context.Context, id string, input ItemInput) (*ItemResult, error) {
	cur, ok := s.state.Workspace().Item(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", workspace.ErrItemNotFound, id)
	}
	item := input.Item
	item.ID = id
	item.CreatedAt = cur.CreatedAt
	if item.Stock < 0 {
		return nil, workspace.ErrNegativeStock
	}
	notices := s.enrich(ctx, &item, input.GenerateDescription)

	if err := s.inventoryRepo.Upsert(ctx, &item); err != nil {
		return nil, fmt.Errorf("store item: %w", err)
	}
	stored, err := s.state.Workspace().UpdateItem(item)
	if err != nil {
		return nil, err
	}
	s.state.SaveSnapshot(ctx)

	view := models.NewInventoryItemView(&stored)
	return &ItemResult{Item: view, Notices: append(notices, workspace.StockNotices(&stored)...)}, nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, id string, delta int) (*ItemResult, error) {
	item, notices, err := s.state.Workspace().AdjustStock(id, delta)
	if err != nil {
		return nil, err
	}
	s.state.Persist(ctx, []models.InventoryItem{item})

	view := models.NewInventoryItemView(&item)
	return &ItemResult{Item: view, Notices: notices}, nil
}

func (s *inventoryService) Delete(ctx context.Context, id string) error {
	ws := s.state.Workspace()
	if _, ok := ws.Item(id); !ok {
		return fmt.Errorf("%w: %s", workspace.ErrItemNotFound, id)
	}
	if ws.Reserved(id) > 0 {
		return fmt.Errorf("%w: %s", workspace.ErrItemReserved, id)
	}
	if err := s.inventoryRepo.Delete(ctx, id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("delete item: %w", err)
	}
	if err := ws.RemoveItem(id); err != nil {
		return err
	}
	s.state.SaveSnapshot(ctx)
	return nil
}

func (s *inventoryService) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]*models.InventoryItem, error) {
	return s.inventoryRepo.SearchByNamePrefix(ctx, common.SanitizeSearchQuery(prefix), limit)
}

func (s *inventoryService) LowStockAlerts(ctx context.Context) ([]*models.InventoryItem, error) {
	return s.inventoryRepo.LowStock(ctx, models.LowStockThreshold)
}

// Describe asks the generator for a description. Only one request per item
// name runs at a time.
func (s *inventoryService) Describe(ctx context.Context, in enrichment.Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	release, err := s.guard.Acquire("describe:" + in.ItemName)
	if err != nil {
		return "", err
	}
	defer release()

	desc, err := s.generator.Generate(ctx, in)
	if err != nil {
		log := logger.WithComponent("inventory")
		log.Warn().Err(err).Str("item", in.ItemName).Msg("description generation failed")
		return "", enrichment.ErrGenerationFailed
	}
	return desc, nil
}
