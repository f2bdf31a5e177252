package book

import "github.com/tidwall/btree"

// restingOrder is a queue entry at a price level. It exists only while the
// order has unfilled quantity and has not been cancelled.
type restingOrder struct {
	id  OrderID
	qty Qty
}

// PriceLevel aggregates every resting order at one price on one side.
// totalQty always equals the sum of qty across orders; orders is FIFO,
// oldest first. An empty level is removed from its index immediately, so
// any level reachable through an index has at least one order.
type PriceLevel struct {
	price    Price
	totalQty Qty
	orders   []*restingOrder
}

// priceLevels is an ordered index of levels for one side. The comparator
// sorts best-price-first, so Min is always the top of book regardless of
// side.
type priceLevels = btree.BTreeG[*PriceLevel]

// newBidLevels sorts greatest price first.
func newBidLevels() *priceLevels {
	return btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.price > b.price
	})
}

// newAskLevels sorts least price first.
func newAskLevels() *priceLevels {
	return btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.price < b.price
	})
}

// enqueue appends an order at the back of the level at px, creating the
// level if absent, and returns the queue entry.
func enqueue(levels *priceLevels, px Price, id OrderID, qty Qty) *restingOrder {
	entry := &restingOrder{id: id, qty: qty}
	// The comparator only reads price, so a bare key works for the lookup.
	level, ok := levels.GetMut(&PriceLevel{price: px})
	if !ok {
		level = &PriceLevel{price: px}
		levels.Set(level)
	}
	level.orders = append(level.orders, entry)
	level.totalQty += qty
	return entry
}

// dequeue removes the order with the given id from the level at px,
// deleting the level if it empties. No-op if the level or order is absent.
func dequeue(levels *priceLevels, px Price, id OrderID) {
	level, ok := levels.GetMut(&PriceLevel{price: px})
	if !ok {
		return
	}
	for i, entry := range level.orders {
		if entry.id != id {
			continue
		}
		level.totalQty -= entry.qty
		level.orders = append(level.orders[:i], level.orders[i+1:]...)
		break
	}
	if len(level.orders) == 0 {
		levels.Delete(level)
	}
}
