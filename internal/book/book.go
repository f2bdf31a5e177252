package book

import "errors"

var ErrBadTickSize = errors.New("invalid tick size")

// orderRecord tracks one accepted order for the lifetime of the process.
// entry points into the owning level's queue while the order rests; it is
// nilled the moment the order leaves the queue (fill, cancel), so a
// terminal record can never reach a stale queue slot.
type orderRecord struct {
	state State
	side  Side
	price Price
	entry *restingOrder
}

// LevelQuote is the answer to a depth query.
type LevelQuote struct {
	Price     string
	TotalQty  Qty
	NumOrders int
}

// OrderStatus is the answer to an order query. QueuePos counts the orders
// strictly ahead at the same price, zero meaning front of the queue.
type OrderStatus struct {
	State     State
	LeavesQty Qty
	QueuePos  int
}

// OrderBook is a single-instrument limit order book with price-time
// priority. It is a pure, single-threaded state machine: not safe for
// concurrent use without external serialization.
type OrderBook struct {
	bids *priceLevels
	asks *priceLevels

	// One record per ever-accepted order id. Records transition to
	// terminal states but are never deleted.
	records map[OrderID]*orderRecord

	tickSize Price
}

// New builds an empty book. tickSize is decimal text and fixes the minimum
// price increment for the lifetime of the book; prices that are not a
// multiple of it are rejected on entry.
func New(tickSize string) (*OrderBook, error) {
	tick, err := ParsePrice(tickSize)
	if err != nil {
		return nil, err
	}
	if tick == 0 {
		return nil, ErrBadTickSize
	}
	return &OrderBook{
		bids:     newBidLevels(),
		asks:     newAskLevels(),
		records:  make(map[OrderID]*orderRecord),
		tickSize: tick,
	}, nil
}

func (book *OrderBook) sideLevels(side Side) *priceLevels {
	if side == Buy {
		return book.bids
	}
	return book.asks
}

// AddOrder submits an order. The price is parsed and checked against the
// tick size; a bad price rejects the order outright, with no record kept
// and no matching attempted. An accepted order first matches against the
// opposite side, then any remainder rests at the back of its price level.
// Returns whether the order was accepted.
func (book *OrderBook) AddOrder(id OrderID, priceText string, qty Qty, side Side) bool {
	px, err := ParsePrice(priceText)
	if err != nil || px%book.tickSize != 0 {
		return false
	}
	// A resting order always carries at least one unit, and there is
	// nothing to match; rejected like a bad price, with no record kept.
	if qty == 0 {
		return false
	}

	remainder := book.match(side, px, qty)

	record := &orderRecord{side: side, price: px}
	switch {
	case remainder == qty:
		record.state = Open
	case remainder > 0:
		record.state = PartiallyFilled
	default:
		record.state = FullyFilled
	}
	if remainder > 0 {
		record.entry = enqueue(book.sideLevels(side), px, id, remainder)
	}
	// Overwrites any previous record under a re-used id.
	book.records[id] = record
	return true
}

// match sweeps the opposite side from the best level outward while px is
// admissible, consuming resting orders in FIFO order. Every unit taken
// from the incoming quantity is taken from exactly one resting order and
// from its level's totalQty. Returns the unmatched remainder.
func (book *OrderBook) match(side Side, px Price, qty Qty) Qty {
	canHit := func(aggressive, resting Price) bool { return aggressive >= resting }
	if side == Sell {
		canHit = func(aggressive, resting Price) bool { return aggressive <= resting }
	}

	levels := book.sideLevels(side.Opposite())
	for qty > 0 {
		level, ok := levels.MinMut()
		if !ok || !canHit(px, level.price) {
			// Levels are sorted best-first, so everything deeper is
			// strictly worse. Done.
			break
		}

		filled := 0
		for _, entry := range level.orders {
			matchQty := min(qty, entry.qty)
			entry.qty -= matchQty
			qty -= matchQty
			level.totalQty -= matchQty

			record := book.records[entry.id]
			if entry.qty == 0 {
				record.state = FullyFilled
				record.entry = nil
				filled++
			} else {
				record.state = PartiallyFilled
			}
			if qty == 0 {
				break
			}
		}

		// Consumption is strictly front-of-queue, so the fully filled
		// orders are exactly the first `filled` entries.
		if filled > 0 {
			level.orders = level.orders[filled:]
		}
		if len(level.orders) == 0 {
			levels.Delete(level)
		}
	}
	return qty
}

// CancelOrder pulls a resting order. Unknown ids and terminal orders are
// no-ops, so cancelling twice is harmless. The emptied level, if any, is
// removed from the cancelled order's own side.
func (book *OrderBook) CancelOrder(id OrderID) {
	record, ok := book.records[id]
	if !ok || record.state.Terminal() {
		return
	}
	dequeue(book.sideLevels(record.side), record.price, id)
	record.state = Cancelled
	record.entry = nil
}

// AmendOrder changes a resting order's quantity. Zero means cancel.
// Reducing keeps the order's queue position; any other change, including
// amending to the same quantity, moves it to the back of its level.
// Unknown ids and terminal orders are no-ops. Price never changes.
func (book *OrderBook) AmendOrder(id OrderID, newQty Qty) {
	if newQty == 0 {
		book.CancelOrder(id)
		return
	}
	record, ok := book.records[id]
	if !ok || record.state.Terminal() {
		return
	}

	levels := book.sideLevels(record.side)
	if newQty < record.entry.qty {
		level, _ := levels.GetMut(&PriceLevel{price: record.price})
		level.totalQty -= record.entry.qty - newQty
		record.entry.qty = newQty
		return
	}
	// Upsizing forfeits time priority: re-queue at the back.
	dequeue(levels, record.price, id)
	record.entry = enqueue(levels, record.price, id, newQty)
}

// QueryLevel reports the depth-th best level (0 = top of book) on the
// requested side, or false if the side has fewer levels.
func (book *OrderBook) QueryLevel(side Side, depth int) (LevelQuote, bool) {
	level, ok := book.sideLevels(side).GetAt(depth)
	if !ok {
		return LevelQuote{}, false
	}
	return LevelQuote{
		Price:     FormatPrice(level.price),
		TotalQty:  level.totalQty,
		NumOrders: len(level.orders),
	}, true
}

// QueryOrder reports the state of an order, or false if the id was never
// accepted. Terminal orders report zero leaves and queue position zero.
func (book *OrderBook) QueryOrder(id OrderID) (OrderStatus, bool) {
	record, ok := book.records[id]
	if !ok {
		return OrderStatus{}, false
	}
	if record.state.Terminal() {
		return OrderStatus{State: record.state}, true
	}

	level, ok := book.sideLevels(record.side).GetMut(&PriceLevel{price: record.price})
	if !ok {
		return OrderStatus{}, false
	}
	for pos, entry := range level.orders {
		if entry.id == id {
			return OrderStatus{
				State:     record.state,
				LeavesQty: entry.qty,
				QueuePos:  pos,
			}, true
		}
	}
	return OrderStatus{}, false
}
