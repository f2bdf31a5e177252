package dispatch

import (
	"strings"
	"testing"

	"gleipnir/internal/book"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, tick string) *Dispatcher {
	t.Helper()
	orderBook, err := book.New(tick)
	require.NoError(t, err)
	return New(orderBook)
}

func TestDispatch_Session(t *testing.T) {
	d := newTestDispatcher(t, "1")

	script := strings.Join([]string{
		"order 1 buy 10 5",
		"q level bid 0",
		"order 2 sell 4 5",
		"q level bid 0",
		"q order 1",
		"q order 2",
		"order 3 buy 6 4",
		"q level bid 1",
		"cancel 1",
		"q level bid 0",
	}, "\n")

	var out strings.Builder
	require.NoError(t, d.Run(strings.NewReader(script), &out))

	assert.Equal(t, strings.Join([]string{
		"bid, 0, 5.000000, 10, 1",
		"bid, 0, 5.000000, 6, 1",
		"PARTIALLY_FILLED, 6, 0",
		"FULLY_FILLED, 0, 0",
		"bid, 1, 4.000000, 6, 1",
		"bid, 0, 4.000000, 6, 1",
		"",
	}, "\n"), out.String())
}

func TestDispatch_SilentAnswers(t *testing.T) {
	d := newTestDispatcher(t, "1")

	// Absent levels and unknown orders answer with nothing at all.
	var out strings.Builder
	d.Dispatch("q level ask 0", &out)
	d.Dispatch("q order 99", &out)
	assert.Empty(t, out.String())
}

func TestDispatch_MalformedLines(t *testing.T) {
	d := newTestDispatcher(t, "1")

	// Blank lines, unknown commands, wrong arities, and bad ids, sides,
	// quantities and depths all drop without output.
	var out strings.Builder
	for _, line := range []string{
		"",
		"   ",
		"frobnicate 1 2 3",
		"order 1 buy 10",
		"order x buy 10 5",
		"order 1 strong 10 5",
		"amend 1",
		"cancel one",
		"q",
		"q depth bid 0",
		"q level middle 0",
		"q level bid -1",
	} {
		d.Dispatch(line, &out)
	}
	assert.Empty(t, out.String())

	// The book is still alive and empty.
	d.Dispatch("order 1 buy 10 5", &out)
	d.Dispatch("q level bid 0", &out)
	assert.Equal(t, "bid, 0, 5.000000, 10, 1\n", out.String())
}

func TestDispatch_AmendFlow(t *testing.T) {
	d := newTestDispatcher(t, "0.5")

	var out strings.Builder
	d.Dispatch("order 1 sell 10 2.5", &out)
	d.Dispatch("order 2 sell 5 2.5", &out)
	d.Dispatch("amend 1 20", &out)
	d.Dispatch("q order 1", &out)
	d.Dispatch("amend 2 0", &out)
	d.Dispatch("q order 2", &out)
	d.Dispatch("q level ask 0", &out)

	assert.Equal(t, strings.Join([]string{
		"OPEN, 20, 1",
		"CANCELLED, 0, 0",
		"ask, 0, 2.500000, 20, 1",
		"",
	}, "\n"), out.String())
}
