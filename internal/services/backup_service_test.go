package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoiceflow/internal/models"
	"invoiceflow/internal/repositories"
	"invoiceflow/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestBackupService(t *testing.T) (*backupService, StateService, *MockInventoryRepository, *MockSettingsRepository, *MockMinioService) {
	t.Helper()
	invRepo := new(MockInventoryRepository)
	settingsRepo := new(MockSettingsRepository)
	minioSvc := new(MockMinioService)
	state, _ := newTestState(t, invRepo, settingsRepo)
	svc := NewBackupService(state, invRepo, settingsRepo, minioSvc, "backups", time.UTC).(*backupService)
	svc.now = func() time.Time { return testNow }
	return svc, state, invRepo, settingsRepo, minioSvc
}

func TestBackupFilename(t *testing.T) {
	assert.Equal(t, "invoiceflow-backup-2024-01-15.json", BackupFilename(testNow))
}

func TestParseBackup(t *testing.T) {
	svc, _, _, _, _ := newTestBackupService(t)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", `{"items":[{"id":"x","name":"Pen","category":"Stationery","price":10,"stock":5}],"invoiceCounter":12}`, false},
		{"empty items", `{"items":[],"invoiceCounter":1}`, false},
		{"not json", `items: []`, true},
		{"missing items", `{"invoiceCounter":3}`, true},
		{"items not array", `{"items":{"a":1},"invoiceCounter":3}`, true},
		{"missing counter", `{"items":[]}`, true},
		{"counter is string", `{"items":[],"invoiceCounter":"7"}`, true},
		{"fractional counter", `{"items":[],"invoiceCounter":2.5}`, true},
		{"negative stock", `{"items":[{"id":"x","stock":-1}],"invoiceCounter":1}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := svc.ParseBackup([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBackup)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, doc.Items)
		})
	}
}

func TestImport_ReplacesCatalogAndClearsPendingSales(t *testing.T) {
	svc, state, invRepo, settingsRepo, _ := newTestBackupService(t)
	ctx := context.Background()
	ws := state.Workspace()

	invRepo.On("UpdateStock", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	_, err := ws.AddLine(workspace.KindInvoice, "a", 2)
	require.NoError(t, err)
	_, err = ws.AddLine(workspace.KindDirectSale, "a", 1)
	require.NoError(t, err)

	doc, err := svc.ParseBackup([]byte(`{"items":[{"id":"p1","name":"Pen","category":"Stationery","price":10,"stock":5},{"name":"Ink","category":"Stationery","price":40,"stock":2}],"invoiceCounter":12}`))
	require.NoError(t, err)

	invRepo.On("ReplaceAll", ctx, mock.MatchedBy(func(items []*models.InventoryItem) bool {
		return len(items) == 2 && items[1].ID != ""
	})).Return(nil)
	settingsRepo.On("SetCounter", ctx, repositories.InvoiceCounterColumn, 12).Return(nil)

	res, err := svc.Import(ctx, doc)
	require.NoError(t, err)

	assert.Equal(t, 2, res.ItemsImported)
	assert.Equal(t, 12, res.InvoiceCounter)
	assert.Equal(t, 2, res.LinesCleared)
	assert.Equal(t, testNow, res.CompletedAt)

	_, ok := ws.Item("a")
	assert.False(t, ok)
	pen, ok := ws.Item("p1")
	require.True(t, ok)
	assert.Equal(t, 5, pen.Stock)
	ds, err := ws.Pending(workspace.KindDirectSale)
	require.NoError(t, err)
	assert.Empty(t, ds.Lines)

	pending, err := ws.Pending(workspace.KindInvoice)
	require.NoError(t, err)
	assert.Empty(t, pending.Lines)
	assert.Equal(t, "INV-0012", pending.Number)
	settingsRepo.AssertExpectations(t)
}

func TestImport_RemoteFailureChangesNothing(t *testing.T) {
	svc, state, invRepo, settingsRepo, _ := newTestBackupService(t)
	ctx := context.Background()

	invRepo.On("ReplaceAll", ctx, mock.Anything).Return(errors.New("tx aborted"))

	_, err := svc.Import(ctx, &models.BackupDocument{Items: []*models.InventoryItem{{ID: "p1", Name: "Pen"}}, InvoiceCounter: 9})
	require.Error(t, err)

	_, ok := state.Workspace().Item("a")
	assert.True(t, ok)
	assert.Equal(t, 1, state.Workspace().Counter(workspace.KindInvoice))
	settingsRepo.AssertNotCalled(t, "SetCounter", mock.Anything, mock.Anything, mock.Anything)
}

func TestExport(t *testing.T) {
	svc, state, _, _, _ := newTestBackupService(t)
	state.Workspace().SetCounter(workspace.KindInvoice, 7)

	doc, err := svc.Export(context.Background())
	require.NoError(t, err)

	assert.Len(t, doc.Items, 2)
	assert.Equal(t, 7, doc.InvoiceCounter)
}

func TestScheduledBackup_UploadsToBucket(t *testing.T) {
	svc, _, _, _, minioSvc := newTestBackupService(t)
	ctx := context.Background()

	minioSvc.On("EnsureBucketExists", ctx, "backups").Return(nil)
	minioSvc.On("Upload", ctx, "backups", "invoiceflow-backup-2024-01-15.json", mock.Anything, mock.AnythingOfType("int64"), "application/json").Return(nil)

	object, err := svc.ScheduledBackup(ctx)
	require.NoError(t, err)

	assert.Equal(t, "invoiceflow-backup-2024-01-15.json", object)
	minioSvc.AssertExpectations(t)
}
