package services

import (
	"context"

	"invoiceflow/internal/models"
	"invoiceflow/internal/shortcuts"
	"invoiceflow/internal/workspace"
)

// ShortcutOutcome is what a shortcut did. Exactly one of Section, Finalized
// and Invoice is set unless only a notice came back.
type ShortcutOutcome struct {
	Action    shortcuts.Action `json:"action"`
	Section   string           `json:"section,omitempty"`
	Finalized *FinalizeResult  `json:"finalized,omitempty"`
	Invoice   *PendingView     `json:"invoice,omitempty"`
	Notices   []models.Notice  `json:"notices,omitempty"`
}

type ShortcutService interface {
	Dispatch(ctx context.Context, ev shortcuts.KeyEvent) (*ShortcutOutcome, error)
}

type shortcutService struct {
	sales SaleService
}

func NewShortcutService(sales SaleService) ShortcutService {
	return &shortcutService{sales: sales}
}

func (s *shortcutService) Dispatch(ctx context.Context, ev shortcuts.KeyEvent) (*ShortcutOutcome, error) {
	action, err := shortcuts.Resolve(ev)
	if err != nil {
		return nil, err
	}
	out := &ShortcutOutcome{Action: action}

	if section, ok := action.Section(); ok {
		out.Section = section
		return out, nil
	}

	switch action {
	case shortcuts.ActionPrintInvoice:
		pending, err := s.sales.Pending(ctx, workspace.KindInvoice)
		if err != nil {
			return nil, err
		}
		if len(pending.Lines) == 0 {
			out.Notices = append(out.Notices, models.Notice{
				Level:   models.NoticeWarning,
				Message: "Add items to the invoice before printing",
			})
			return out, nil
		}
		res, err := s.sales.Finalize(ctx, workspace.KindInvoice)
		if err != nil {
			return nil, err
		}
		out.Finalized = res
		out.Notices = res.Notices
	case shortcuts.ActionNewInvoice:
		view, err := s.sales.NewInvoice(ctx)
		if err != nil {
			return nil, err
		}
		out.Invoice = view
	}
	return out, nil
}
