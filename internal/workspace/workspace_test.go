package workspace

import (
	"fmt"
	"testing"
	"time"

	"invoiceflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type WorkspaceTestSuite struct {
	suite.Suite
	ws  *Workspace
	seq int
}

func (s *WorkspaceTestSuite) SetupTest() {
	s.seq = 0
	fixed := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	s.ws = New(
		WithClock(func() time.Time { return fixed }),
		WithLineIDs(func() string {
			s.seq++
			return fmt.Sprintf("line-%d", s.seq)
		}),
	)
	for _, item := range []models.InventoryItem{
		{ID: "a", Name: "Rice 5kg", Category: "Grocery", Price: 400, BuyingPrice: 320, Stock: 10},
		{ID: "b", Name: "Sugar 1kg", Category: "Grocery", Price: 50, BuyingPrice: 42, Stock: 6},
		{ID: "c", Name: "Soap", Category: "Personal Care", Price: 30, BuyingPrice: 20, Stock: 2},
	} {
		_, err := s.ws.AddItem(item)
		s.Require().NoError(err)
	}
}

func (s *WorkspaceTestSuite) stock(id string) int {
	item, ok := s.ws.Item(id)
	s.Require().True(ok)
	return item.Stock
}

func (s *WorkspaceTestSuite) TestAddLine_DecrementsStock() {
	res, err := s.ws.AddLine(KindInvoice, "a", 3)
	s.Require().NoError(err)

	s.Equal(7, s.stock("a"))
	s.Equal("line-1", res.Line.LineID)
	s.Equal(1200.0, res.Line.Total)
	s.Require().Len(res.Affected, 1)
	s.Equal(7, res.Affected[0].Stock)
	s.Empty(res.Notices)
}

func (s *WorkspaceTestSuite) TestAddLine_MergesSameItem() {
	_, err := s.ws.AddLine(KindInvoice, "a", 2)
	s.Require().NoError(err)
	res, err := s.ws.AddLine(KindInvoice, "a", 3)
	s.Require().NoError(err)

	p, err := s.ws.Pending(KindInvoice)
	s.Require().NoError(err)
	s.Require().Len(p.Lines, 1)
	s.Equal(5, p.Lines[0].Quantity)
	s.Equal(2000.0, p.Lines[0].Total)
	s.Equal("line-1", res.Line.LineID)
	s.Equal(5, s.stock("a"))
}

func (s *WorkspaceTestSuite) TestAddLine_RejectsOverStock() {
	_, err := s.ws.AddLine(KindInvoice, "b", 7)
	s.ErrorIs(err, ErrInsufficientStock)

	s.Equal(6, s.stock("b"))
	p, _ := s.ws.Pending(KindInvoice)
	s.Empty(p.Lines)
}

func (s *WorkspaceTestSuite) TestAddLine_RejectsInvalidInput() {
	_, err := s.ws.AddLine(KindInvoice, "a", 0)
	s.ErrorIs(err, ErrInvalidQuantity)
	_, err = s.ws.AddLine(KindInvoice, "a", -2)
	s.ErrorIs(err, ErrInvalidQuantity)
	_, err = s.ws.AddLine(KindInvoice, "missing", 1)
	s.ErrorIs(err, ErrItemNotFound)
	_, err = s.ws.AddLine(Kind("quote"), "a", 1)
	s.ErrorIs(err, ErrUnknownKind)

	s.Equal(10, s.stock("a"))
}

func (s *WorkspaceTestSuite) TestAddLine_StockNotices() {
	res, err := s.ws.AddLine(KindDirectSale, "b", 3)
	s.Require().NoError(err)
	s.Require().Len(res.Notices, 1)
	s.Equal(models.AlertTypeLowStock, res.Notices[0].Type)

	res, err = s.ws.AddLine(KindDirectSale, "c", 2)
	s.Require().NoError(err)
	s.Require().Len(res.Notices, 1)
	s.Equal(models.AlertTypeOutOfStock, res.Notices[0].Type)
	s.Equal(0, s.stock("c"))
}

func (s *WorkspaceTestSuite) TestAddThenRemove_RoundTrip() {
	before, _ := s.ws.Pending(KindInvoice)
	res, err := s.ws.AddLine(KindInvoice, "b", 4)
	s.Require().NoError(err)

	_, err = s.ws.RemoveLine(KindInvoice, res.Line.LineID)
	s.Require().NoError(err)

	after, _ := s.ws.Pending(KindInvoice)
	s.Equal(6, s.stock("b"))
	s.Equal(before.Lines, after.Lines)
}

func (s *WorkspaceTestSuite) TestRemoveLine_Unknown() {
	_, err := s.ws.RemoveLine(KindInvoice, "nope")
	s.ErrorIs(err, ErrLineNotFound)
}

func (s *WorkspaceTestSuite) TestClear_RestoresEveryLine() {
	_, err := s.ws.AddLine(KindDirectSale, "a", 4)
	s.Require().NoError(err)
	_, err = s.ws.AddLine(KindDirectSale, "b", 1)
	s.Require().NoError(err)
	_, err = s.ws.AddLine(KindDirectSale, "c", 2)
	s.Require().NoError(err)

	res, err := s.ws.Clear(KindDirectSale)
	s.Require().NoError(err)

	s.Len(res.Affected, 3)
	s.Equal(10, s.stock("a"))
	s.Equal(6, s.stock("b"))
	s.Equal(2, s.stock("c"))
	p, _ := s.ws.Pending(KindDirectSale)
	s.Empty(p.Lines)
}

func (s *WorkspaceTestSuite) TestStockInvariant_AcrossKinds() {
	_, err := s.ws.AddLine(KindInvoice, "a", 3)
	s.Require().NoError(err)
	_, err = s.ws.AddLine(KindDirectSale, "a", 2)
	s.Require().NoError(err)

	s.Equal(5, s.ws.Reserved("a"))
	s.Equal(10, s.stock("a")+s.ws.Reserved("a"))

	_, err = s.ws.Clear(KindInvoice)
	s.Require().NoError(err)
	s.Equal(10, s.stock("a")+s.ws.Reserved("a"))
}

func (s *WorkspaceTestSuite) TestBeginFinalize_FreezesSale() {
	first, err := s.ws.AddLine(KindInvoice, "a", 2)
	s.Require().NoError(err)

	snap, counter, err := s.ws.BeginFinalize(KindInvoice)
	s.Require().NoError(err)
	s.Equal(1, counter)
	s.Equal("INV-0001", snap.Number)
	s.Require().Len(snap.Lines, 1)

	_, err = s.ws.AddLine(KindInvoice, "a", 1)
	s.ErrorIs(err, ErrFinalizing)
	_, err = s.ws.RemoveLine(KindInvoice, first.Line.LineID)
	s.ErrorIs(err, ErrFinalizing)
	_, err = s.ws.Clear(KindInvoice)
	s.ErrorIs(err, ErrFinalizing)
	s.ErrorIs(s.ws.SetBuyer(models.BuyerAddress{Name: "Late"}), ErrFinalizing)
	_, _, err = s.ws.BeginFinalize(KindInvoice)
	s.ErrorIs(err, ErrFinalizing)

	// the other kind is unaffected
	_, err = s.ws.AddLine(KindDirectSale, "b", 1)
	s.NoError(err)

	s.Require().NoError(s.ws.CommitFinalize(KindInvoice, counter+1))

	p, _ := s.ws.Pending(KindInvoice)
	s.Empty(p.Lines)
	s.Equal("INV-0002", p.Number)
	s.Equal(8, s.stock("a"))
	s.Equal(0, s.ws.Reserved("a"))

	_, err = s.ws.AddLine(KindInvoice, "a", 1)
	s.NoError(err)
}

func (s *WorkspaceTestSuite) TestAbortFinalize_KeepsLines() {
	_, err := s.ws.AddLine(KindDirectSale, "b", 2)
	s.Require().NoError(err)
	s.Require().NoError(s.ws.SetSaleDate("2024-01-01"))

	_, _, err = s.ws.BeginFinalize(KindDirectSale)
	s.Require().NoError(err)
	s.ErrorIs(s.ws.SetSaleDate("2024-01-02"), ErrFinalizing)
	s.ws.AbortFinalize(KindDirectSale)

	p, _ := s.ws.Pending(KindDirectSale)
	s.Len(p.Lines, 1)
	s.Equal("2024-01-01", p.SaleDate)
	s.Equal(1, s.ws.Counter(KindDirectSale))
	s.Error(s.ws.CommitFinalize(KindDirectSale, 2))

	_, err = s.ws.Clear(KindDirectSale)
	s.NoError(err)
	s.Equal(6, s.stock("b"))
}

func (s *WorkspaceTestSuite) TestAdjustStock() {
	item, notices, err := s.ws.AdjustStock("a", -7)
	s.Require().NoError(err)
	s.Equal(3, item.Stock)
	s.Len(notices, 1)

	_, _, err = s.ws.AdjustStock("a", -4)
	s.ErrorIs(err, ErrNegativeStock)
	s.Equal(3, s.stock("a"))
}

func (s *WorkspaceTestSuite) TestRemoveItem_ReservedIsRefused() {
	_, err := s.ws.AddLine(KindInvoice, "c", 1)
	s.Require().NoError(err)

	s.ErrorIs(s.ws.RemoveItem("c"), ErrItemReserved)
	s.NoError(s.ws.RemoveItem("b"))
	_, ok := s.ws.Item("b")
	s.False(ok)
}

func (s *WorkspaceTestSuite) TestReplaceInventory_DropsPendingWithoutRestoring() {
	_, err := s.ws.AddLine(KindInvoice, "a", 2)
	s.Require().NoError(err)
	_, err = s.ws.AddLine(KindDirectSale, "b", 3)
	s.Require().NoError(err)

	dropped := s.ws.ReplaceInventory([]*models.InventoryItem{
		{ID: "z", Name: "Tea", Category: "Grocery", Price: 120, Stock: 9},
	}, 42)

	s.Equal(2, dropped)
	s.Equal(42, s.ws.Counter(KindInvoice))
	inv := s.ws.Inventory(nil)
	s.Require().Len(inv, 1)
	s.Equal("z", inv[0].ID)
	p, _ := s.ws.Pending(KindInvoice)
	s.Empty(p.Lines)
	ds, _ := s.ws.Pending(KindDirectSale)
	s.Empty(ds.Lines)

	// nothing left to restore into the imported catalog
	res, err := s.ws.Clear(KindDirectSale)
	s.Require().NoError(err)
	s.Empty(res.Affected)
	s.Equal(9, s.stock("z"))
}

func (s *WorkspaceTestSuite) TestInventoryFilter() {
	got := s.ws.Inventory(&models.InventorySearchFilter{Query: "su"})
	s.Require().Len(got, 1)
	s.Equal("b", got[0].ID)

	got = s.ws.Inventory(&models.InventorySearchFilter{Category: "grocery"})
	s.Len(got, 2)

	got = s.ws.Inventory(&models.InventorySearchFilter{Status: models.StockStatusLow})
	s.Require().Len(got, 1)
	s.Equal("c", got[0].ID)
}

func (s *WorkspaceTestSuite) TestSnapshotHydrate() {
	_, err := s.ws.AddLine(KindInvoice, "a", 1)
	s.Require().NoError(err)
	s.Require().NoError(s.ws.SetBuyer(models.BuyerAddress{Name: "Acme Traders", GSTIN: "29ABCDE1234F1Z5"}))
	snap := s.ws.Snapshot()

	restored := New()
	restored.Hydrate(snap)

	s.Equal(snap, restored.Snapshot())
	s.Equal(1, restored.Reserved("a"))
}

func TestWorkspaceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceTestSuite))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("direct-sale")
	require.NoError(t, err)
	assert.Equal(t, KindDirectSale, k)
	assert.Equal(t, "DS-0004", k.DocumentNumber(4))

	_, err = ParseKind("quote")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSetSaleDate(t *testing.T) {
	ws := New()
	assert.Error(t, ws.SetSaleDate("02/01/2024"))
	require.NoError(t, ws.SetSaleDate("2024-01-02"))

	p, err := ws.Pending(KindDirectSale)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", p.SaleDate)
}
