// Package cart maintains the in-progress ticket selections and keeps the
// derived totals consistent. Totals are recomputed inside the same mutation
// that changed quantities, never lazily.
package cart

import (
	"sync"

	"github.com/vmtran/tourbook/internal/model"
)

// Ledger is the cart state container. Construct one per user flow (and one
// per test case); it is not a package-level global.
type Ledger struct {
	mu     sync.RWMutex
	items  []model.CartItem
	direct *model.CartItem // at most one "buy now" item
}

// NewLedger returns an empty cart.
func NewLedger() *Ledger {
	return &Ledger{}
}

// AddItem inserts a selection. An item with the same ScheduleID is fully
// replaced in place, not merged; otherwise the item is appended, preserving
// the order of existing entries. An item whose lines are all zero-quantity
// is treated as a removal.
func (l *Ledger) AddItem(item model.CartItem) {
	item = normalize(item)

	l.mu.Lock()
	defer l.mu.Unlock()

	if allZero(item) {
		l.remove(item.ScheduleID)
		return
	}
	for i := range l.items {
		if l.items[i].ScheduleID == item.ScheduleID {
			l.items[i] = item
			return
		}
	}
	l.items = append(l.items, item)
}

// RemoveItem deletes the item for a schedule; absent schedules are a no-op.
func (l *Ledger) RemoveItem(scheduleID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remove(scheduleID)
}

// UpdateQuantity sets one ticket line's quantity, clamped to a minimum of
// zero, and recomputes the item total. When every line of the item reaches
// zero the whole item is pruned from the cart. Unknown schedule or ticket
// ids are a no-op.
func (l *Ledger) UpdateQuantity(scheduleID, ticketTypeID string, quantity int) {
	if quantity < 0 {
		quantity = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		if l.items[i].ScheduleID != scheduleID {
			continue
		}
		for j := range l.items[i].Tickets {
			if l.items[i].Tickets[j].TicketTypeID != ticketTypeID {
				continue
			}
			l.items[i].Tickets[j].Quantity = quantity
			l.items[i].TotalPrice = l.items[i].Total()
			if allZero(l.items[i]) {
				l.items = append(l.items[:i], l.items[i+1:]...)
			}
			return
		}
		return
	}
}

// Clear empties the cart unconditionally (used after a confirmed payment).
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// Items returns a copy of the cart contents in insertion order.
func (l *Ledger) Items() []model.CartItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.CartItem, len(l.items))
	for i, it := range l.items {
		out[i] = copyItem(it)
	}
	return out
}

// Item returns the entry for a schedule, if present.
func (l *Ledger) Item(scheduleID string) (model.CartItem, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, it := range l.items {
		if it.ScheduleID == scheduleID {
			return copyItem(it), true
		}
	}
	return model.CartItem{}, false
}

// TotalPrice sums the item totals. Pure read, no side effects.
func (l *Ledger) TotalPrice() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var sum int64
	for _, it := range l.items {
		sum += it.TotalPrice
	}
	return sum
}

// ItemCount returns the number of schedules in the cart.
func (l *Ledger) ItemCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// SetDirectCheckout overwrites the single "buy now" slot; nil clears it.
func (l *Ledger) SetDirectCheckout(item *model.CartItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if item == nil {
		l.direct = nil
		return
	}
	it := normalize(copyItem(*item))
	l.direct = &it
}

// DirectCheckout returns the "buy now" item, if one is set.
func (l *Ledger) DirectCheckout() (model.CartItem, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.direct == nil {
		return model.CartItem{}, false
	}
	return copyItem(*l.direct), true
}

func (l *Ledger) remove(scheduleID string) {
	for i := range l.items {
		if l.items[i].ScheduleID == scheduleID {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// normalize deep-copies the ticket lines, clamps quantities and recomputes
// the total so caller-supplied derived fields can never go stale.
func normalize(item model.CartItem) model.CartItem {
	item = copyItem(item)
	for i := range item.Tickets {
		if item.Tickets[i].Quantity < 0 {
			item.Tickets[i].Quantity = 0
		}
	}
	item.TotalPrice = item.Total()
	return item
}

func copyItem(item model.CartItem) model.CartItem {
	item.Tickets = append([]model.TicketLine(nil), item.Tickets...)
	return item
}

func allZero(item model.CartItem) bool {
	for _, t := range item.Tickets {
		if t.Quantity > 0 {
			return false
		}
	}
	return true
}
