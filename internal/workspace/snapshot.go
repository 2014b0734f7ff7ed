package workspace

import (
	"sort"

	"invoiceflow/internal/models"
)

// Snapshot is the serialized workspace mirrored to the local store.
type Snapshot struct {
	Inventory         []models.InventoryItem `json:"inventory"`
	Invoice           []models.LineItem      `json:"invoice"`
	DirectSale        []models.LineItem      `json:"directSale"`
	Buyer             models.BuyerAddress    `json:"buyer"`
	SaleDate          string                 `json:"saleDate,omitempty"`
	InvoiceCounter    int                    `json:"invoiceCounter"`
	DirectSaleCounter int                    `json:"directSaleCounter"`
}

// Snapshot copies the full state.
func (w *Workspace) Snapshot() *Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s := &Snapshot{
		Inventory:         make([]models.InventoryItem, 0, len(w.items)),
		Invoice:           append([]models.LineItem{}, w.pending[KindInvoice].lines...),
		DirectSale:        append([]models.LineItem{}, w.pending[KindDirectSale].lines...),
		Buyer:             w.pending[KindInvoice].buyer,
		SaleDate:          w.pending[KindDirectSale].saleDate,
		InvoiceCounter:    w.counters[KindInvoice],
		DirectSaleCounter: w.counters[KindDirectSale],
	}
	for _, item := range w.items {
		s.Inventory = append(s.Inventory, *item)
	}
	sort.Slice(s.Inventory, func(i, j int) bool { return s.Inventory[i].ID < s.Inventory[j].ID })
	return s
}

// Hydrate replaces the state with a snapshot.
func (w *Workspace) Hydrate(s *Snapshot) {
	if s == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.items = make(map[string]*models.InventoryItem, len(s.Inventory))
	for i := range s.Inventory {
		item := s.Inventory[i]
		w.items[item.ID] = &item
	}
	w.pending[KindInvoice] = &pending{
		lines: append([]models.LineItem(nil), s.Invoice...),
		buyer: s.Buyer,
	}
	w.pending[KindDirectSale] = &pending{
		lines:    append([]models.LineItem(nil), s.DirectSale...),
		saleDate: s.SaleDate,
	}
	w.counters[KindInvoice] = max(s.InvoiceCounter, 1)
	w.counters[KindDirectSale] = max(s.DirectSaleCounter, 1)
}

// LoadInventory seeds the catalog from the store, keeping pending sales.
// Items held by pending lines keep their in-memory stock, since the store
// may lag behind reservations.
func (w *Workspace) LoadInventory(items []*models.InventoryItem) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := make(map[string]*models.InventoryItem, len(items))
	for _, it := range items {
		cp := *it
		if cur, ok := w.items[cp.ID]; ok && w.reservedLocked(cp.ID) > 0 {
			cp.Stock = cur.Stock
		}
		next[cp.ID] = &cp
	}
	w.items = next
}

func (w *Workspace) reservedLocked(itemID string) int {
	total := 0
	for _, p := range w.pending {
		for _, l := range p.lines {
			if l.ItemID == itemID {
				total += l.Quantity
			}
		}
	}
	return total
}
