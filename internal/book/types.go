package book

// OrderID identifies an order for its whole lifetime. Assigned by the caller.
type OrderID = uint64

// Qty is a number of units of the instrument.
type Qty = uint64

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

type State int

const (
	// Open orders rest in the book untouched.
	Open State = iota
	// PartiallyFilled orders rest in the book with some quantity executed.
	PartiallyFilled
	// FullyFilled orders have no quantity left. Terminal.
	FullyFilled
	// Cancelled orders were pulled before completing. Terminal.
	Cancelled
)

var stateName = map[State]string{
	Open:            "OPEN",
	PartiallyFilled: "PARTIALLY_FILLED",
	FullyFilled:     "FULLY_FILLED",
	Cancelled:       "CANCELLED",
}

func (s State) String() string {
	return stateName[s]
}

// Terminal reports whether the order can never trade again.
func (s State) Terminal() bool {
	return s == FullyFilled || s == Cancelled
}
