package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/repositories"
	"invoiceflow/internal/workspace"
)

// BackupFilename is the download and object name of an export made on day.
func BackupFilename(day time.Time) string {
	return "invoiceflow-backup-" + day.Format("2006-01-02") + ".json"
}

type BackupService interface {
	Export(ctx context.Context) (*models.BackupDocument, error)
	// ParseBackup checks an uploaded file. It never touches state.
	ParseBackup(data []byte) (*models.BackupDocument, error)
	Import(ctx context.Context, doc *models.BackupDocument) (*models.ImportResult, error)
	// ScheduledBackup writes an export to object storage and returns its object name.
	ScheduledBackup(ctx context.Context) (string, error)
}

type backupService struct {
	state         StateService
	inventoryRepo repositories.InventoryRepository
	settingsRepo  repositories.SettingsRepository
	minioSvc      MinioService
	bucket        string
	loc           *time.Location
	now           func() time.Time
}

func NewBackupService(state StateService, inventoryRepo repositories.InventoryRepository, settingsRepo repositories.SettingsRepository, minioSvc MinioService, bucket string, loc *time.Location) BackupService {
	if loc == nil {
		loc = time.UTC
	}
	return &backupService{
		state:         state,
		inventoryRepo: inventoryRepo,
		settingsRepo:  settingsRepo,
		minioSvc:      minioSvc,
		bucket:        bucket,
		loc:           loc,
		now:           time.Now,
	}
}

func (s *backupService) Export(ctx context.Context) (*models.BackupDocument, error) {
	ws := s.state.Workspace()
	items := ws.Inventory(nil)
	doc := &models.BackupDocument{
		Items:          make([]*models.InventoryItem, 0, len(items)),
		InvoiceCounter: ws.Counter(workspace.KindInvoice),
	}
	for i := range items {
		doc.Items = append(doc.Items, &items[i])
	}
	return doc, nil
}

func (s *backupService) ParseBackup(data []byte) (*models.BackupDocument, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	itemsRaw, ok := raw["items"]
	if !ok || len(itemsRaw) == 0 || itemsRaw[0] != '[' {
		return nil, ErrInvalidBackup
	}
	var counter float64
	counterRaw, ok := raw["invoiceCounter"]
	if !ok {
		return nil, ErrInvalidBackup
	}
	if err := json.Unmarshal(counterRaw, &counter); err != nil {
		return nil, ErrInvalidBackup
	}
	if counter < 0 || counter != math.Trunc(counter) {
		return nil, ErrInvalidBackup
	}

	var items []*models.InventoryItem
	if err := json.Unmarshal(itemsRaw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	for i, it := range items {
		if it == nil || it.Stock < 0 {
			return nil, fmt.Errorf("%w: item %d is invalid", ErrInvalidBackup, i)
		}
	}
	return &models.BackupDocument{Items: items, InvoiceCounter: int(counter)}, nil
}

// Import replaces the catalog remotely first, then in memory. Both pending
// sales are emptied without returning their stock to the new catalog.
func (s *backupService) Import(ctx context.Context, doc *models.BackupDocument) (*models.ImportResult, error) {
	if doc == nil || doc.Items == nil {
		return nil, ErrInvalidBackup
	}
	log := logger.WithComponent("backup")

	items := make([]*models.InventoryItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		cp := *it
		if cp.ID == "" {
			cp.ID = workspace.NewItemID()
		}
		items = append(items, &cp)
	}

	if err := s.inventoryRepo.ReplaceAll(ctx, items); err != nil {
		return nil, fmt.Errorf("replace inventory: %w", err)
	}

	ws := s.state.Workspace()
	cleared := ws.ReplaceInventory(items, doc.InvoiceCounter)
	counter := ws.Counter(workspace.KindInvoice)
	if err := s.settingsRepo.SetCounter(ctx, repositories.InvoiceCounterColumn, counter); err != nil {
		log.Error().Err(err).Int("counter", counter).Msg("invoice counter write failed")
	}
	s.state.SaveSnapshot(ctx)

	log.Info().Int("items", len(items)).Int("invoice_counter", counter).Int("lines_cleared", cleared).Msg("backup imported")
	return &models.ImportResult{
		ItemsImported:  len(items),
		InvoiceCounter: counter,
		LinesCleared:   cleared,
		CompletedAt:    s.now(),
	}, nil
}

func (s *backupService) ScheduledBackup(ctx context.Context) (string, error) {
	doc, err := s.Export(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	if err := s.minioSvc.EnsureBucketExists(ctx, s.bucket); err != nil {
		return "", err
	}
	object := BackupFilename(s.now().In(s.loc))
	if err := s.minioSvc.Upload(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return "", err
	}
	return object, nil
}
