package dispatch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gleipnir/internal/book"

	"github.com/rs/zerolog/log"
)

// Dispatcher translates the line-oriented command protocol into book
// operations and renders query answers. One dispatcher owns one book;
// callers must serialize access to Dispatch externally.
//
// Commands:
//
//	order <id> <buy|sell> <qty> <price>
//	cancel <id>
//	amend <id> <qty>
//	q level <bid|ask> <n>
//	q order <id>
//
// Malformed lines are logged and dropped; a live book must never die on
// bad input.
type Dispatcher struct {
	book *book.OrderBook
}

func New(b *book.OrderBook) *Dispatcher {
	return &Dispatcher{book: b}
}

// Dispatch executes one command line, writing any query answer to w.
func (d *Dispatcher) Dispatch(line string, w io.Writer) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return
	}

	var err error
	switch tokens[0] {
	case "order":
		err = d.order(tokens)
	case "cancel":
		err = d.cancel(tokens)
	case "amend":
		err = d.amend(tokens)
	case "q":
		err = d.query(tokens, w)
	default:
		err = fmt.Errorf("unknown command %q", tokens[0])
	}
	if err != nil {
		log.Warn().Err(err).Str("line", line).Msg("dropping command")
	}
}

// Run drives a whole session: every line read from r is dispatched, with
// answers written to w. Stops at EOF or on a blank line, like the original
// console session.
func (d *Dispatcher) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			return nil
		}
		d.Dispatch(line, w)
	}
	return scanner.Err()
}

func (d *Dispatcher) order(tokens []string) error {
	if len(tokens) != 5 {
		return fmt.Errorf("order wants 4 arguments, got %d", len(tokens)-1)
	}
	id, err := strconv.ParseUint(tokens[1], 10, 64)
	if err != nil {
		return err
	}
	side, err := parseSide(tokens[2])
	if err != nil {
		return err
	}
	qty, err := strconv.ParseUint(tokens[3], 10, 64)
	if err != nil {
		return err
	}
	// Tick or price rejections are silent: the book simply keeps no
	// record, and later queries answer "not found".
	d.book.AddOrder(id, tokens[4], qty, side)
	return nil
}

func (d *Dispatcher) cancel(tokens []string) error {
	if len(tokens) != 2 {
		return fmt.Errorf("cancel wants 1 argument, got %d", len(tokens)-1)
	}
	id, err := strconv.ParseUint(tokens[1], 10, 64)
	if err != nil {
		return err
	}
	d.book.CancelOrder(id)
	return nil
}

func (d *Dispatcher) amend(tokens []string) error {
	if len(tokens) != 3 {
		return fmt.Errorf("amend wants 2 arguments, got %d", len(tokens)-1)
	}
	id, err := strconv.ParseUint(tokens[1], 10, 64)
	if err != nil {
		return err
	}
	qty, err := strconv.ParseUint(tokens[2], 10, 64)
	if err != nil {
		return err
	}
	d.book.AmendOrder(id, qty)
	return nil
}

func (d *Dispatcher) query(tokens []string, w io.Writer) error {
	if len(tokens) < 2 {
		return errors.New("bare q command")
	}
	switch tokens[1] {
	case "level":
		if len(tokens) != 4 {
			return fmt.Errorf("q level wants 2 arguments, got %d", len(tokens)-2)
		}
		side, err := parseBookSide(tokens[2])
		if err != nil {
			return err
		}
		depth, err := strconv.ParseUint(tokens[3], 10, 32)
		if err != nil {
			return err
		}
		quote, ok := d.book.QueryLevel(side, int(depth))
		if !ok {
			return nil
		}
		_, err = fmt.Fprintf(w, "%s, %s, %s, %d, %d\n",
			tokens[2], tokens[3], quote.Price, quote.TotalQty, quote.NumOrders)
		return err
	case "order":
		if len(tokens) != 3 {
			return fmt.Errorf("q order wants 1 argument, got %d", len(tokens)-2)
		}
		id, err := strconv.ParseUint(tokens[2], 10, 64)
		if err != nil {
			return err
		}
		status, ok := d.book.QueryOrder(id)
		if !ok {
			return nil
		}
		_, err = fmt.Fprintf(w, "%s, %d, %d\n",
			status.State, status.LeavesQty, status.QueuePos)
		return err
	default:
		return fmt.Errorf("unknown query %q", tokens[1])
	}
}

// parseSide reads an order entry side.
func parseSide(text string) (book.Side, error) {
	switch text {
	case "buy":
		return book.Buy, nil
	case "sell":
		return book.Sell, nil
	}
	return 0, fmt.Errorf("unknown side %q", text)
}

// parseBookSide reads a depth query side, which the protocol names by the
// book half rather than the order direction.
func parseBookSide(text string) (book.Side, error) {
	switch text {
	case "bid":
		return book.Buy, nil
	case "ask":
		return book.Sell, nil
	}
	return 0, fmt.Errorf("unknown book side %q", text)
}
