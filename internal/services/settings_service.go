package services

import (
	"context"
	"fmt"

	"invoiceflow/internal/common"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/repositories"
	"invoiceflow/internal/workspace"
)

// SettingsView is the settings as the client sees them: the live counters
// plus the numbers the next documents will carry.
type SettingsView struct {
	models.AppSettings
	NextInvoiceNumber    string `json:"nextInvoiceNumber"`
	NextDirectSaleNumber string `json:"nextDirectSaleNumber"`
}

type SettingsService interface {
	Get(ctx context.Context) (*SettingsView, error)
	SetBuyerAddress(ctx context.Context, buyer models.BuyerAddress) error
	LookupBuyer(ctx context.Context, gstin string) (*models.BuyerProfile, error)
	ListBuyers(ctx context.Context) ([]*models.BuyerProfile, error)
}

type settingsService struct {
	state        StateService
	settingsRepo repositories.SettingsRepository
	buyerRepo    repositories.BuyerProfileRepository
}

func NewSettingsService(state StateService, settingsRepo repositories.SettingsRepository, buyerRepo repositories.BuyerProfileRepository) SettingsService {
	return &settingsService{state: state, settingsRepo: settingsRepo, buyerRepo: buyerRepo}
}

func (s *settingsService) Get(ctx context.Context) (*SettingsView, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	ws := s.state.Workspace()
	settings.InvoiceCounter = ws.Counter(workspace.KindInvoice)
	settings.DirectSaleCounter = ws.Counter(workspace.KindDirectSale)
	return &SettingsView{
		AppSettings:          *settings,
		NextInvoiceNumber:    workspace.KindInvoice.DocumentNumber(settings.InvoiceCounter),
		NextDirectSaleNumber: workspace.KindDirectSale.DocumentNumber(settings.DirectSaleCounter),
	}, nil
}

// SetBuyerAddress stores the default buyer and applies it to the pending invoice.
func (s *settingsService) SetBuyerAddress(ctx context.Context, buyer models.BuyerAddress) error {
	if err := common.ValidateGSTIN(buyer.GSTIN, "gstin"); err != nil {
		return err
	}
	if err := s.settingsRepo.SaveBuyerAddress(ctx, buyer); err != nil {
		return fmt.Errorf("save buyer address: %w", err)
	}
	if err := s.state.Workspace().SetBuyer(buyer); err != nil {
		log := logger.WithComponent("settings")
		log.Warn().Err(err).Msg("default buyer saved, pending invoice left unchanged")
		return nil
	}
	s.state.SaveSnapshot(ctx)
	return nil
}

func (s *settingsService) LookupBuyer(ctx context.Context, gstin string) (*models.BuyerProfile, error) {
	key := models.NormalizeGSTIN(gstin)
	if !(models.BuyerAddress{GSTIN: key}).HasRealGSTIN() {
		return nil, repositories.ErrNotFound
	}
	return s.buyerRepo.Get(ctx, key)
}

func (s *settingsService) ListBuyers(ctx context.Context) ([]*models.BuyerProfile, error) {
	return s.buyerRepo.List(ctx)
}
