package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubSink struct {
	trades   int
	equity   int
	closed   bool
	recErr   error
	closeErr error
}

func (s *stubSink) RecordTrade(TradeRecord) error  { s.trades++; return s.recErr }
func (s *stubSink) RecordEquity(EquityPoint) error { s.equity++; return s.recErr }
func (s *stubSink) Close() error                   { s.closed = true; return s.closeErr }

func TestMultiFansOutToEverySink(t *testing.T) {
	t.Parallel()

	a, b := &stubSink{}, &stubSink{}
	m := Multi{a, b}

	assert.NoError(t, m.RecordTrade(TradeRecord{TradeID: "T1"}))
	assert.NoError(t, m.RecordEquity(EquityPoint{Time: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}))

	assert.Equal(t, 1, a.trades)
	assert.Equal(t, 1, b.trades)
	assert.Equal(t, 1, a.equity)
	assert.Equal(t, 1, b.equity)
}

func TestMultiStopsAtFirstError(t *testing.T) {
	t.Parallel()

	boom := errors.New("sink full")
	a := &stubSink{recErr: boom}
	b := &stubSink{}
	m := Multi{a, b}

	assert.ErrorIs(t, m.RecordTrade(TradeRecord{TradeID: "T1"}), boom)
	assert.Equal(t, 1, a.trades)
	assert.Zero(t, b.trades)

	assert.ErrorIs(t, m.RecordEquity(EquityPoint{}), boom)
	assert.Zero(t, b.equity)
}

func TestMultiCloseClosesEverySink(t *testing.T) {
	t.Parallel()

	boom := errors.New("already closed")
	a := &stubSink{closeErr: boom}
	b := &stubSink{}
	m := Multi{a, b}

	assert.ErrorIs(t, m.Close(), boom)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
