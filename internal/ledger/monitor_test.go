package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homebooks/ledger/internal/ledger"
	apperrors "github.com/homebooks/ledger/internal/shared/errors"
	"github.com/homebooks/ledger/pkg/logger"
)

type checkerFunc func(ctx context.Context) (*ledger.IntegrityReport, error)

func (f checkerFunc) CheckIntegrity(ctx context.Context) (*ledger.IntegrityReport, error) {
	return f(ctx)
}

func TestIntegrityMonitor(t *testing.T) {
	ctx := context.Background()
	reports := []*ledger.IntegrityReport{
		{Balanced: true, Totals: ledger.Totals{Debits: 100, Credits: 100}},
		{Balanced: false, Totals: ledger.Totals{Debits: 100, Credits: 90}},
	}
	var calls int
	m := ledger.NewIntegrityMonitor(checkerFunc(func(context.Context) (*ledger.IntegrityReport, error) {
		if calls >= len(reports) {
			return nil, errors.New("db gone")
		}
		r := reports[calls]
		calls++
		return r, nil
	}), 0, logger.Discard())

	assert.Nil(t, m.Last())
	assert.NoError(t, m.Health(ctx))

	m.RunOnce(ctx)
	assert.Same(t, reports[0], m.Last())
	assert.NoError(t, m.Health(ctx))

	m.RunOnce(ctx)
	err := m.Health(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeIntegrityViolation))
	assert.Contains(t, err.Error(), "credits 90")

	m.RunOnce(ctx)
	assert.Same(t, reports[1], m.Last(), "failed run keeps the previous report")
}

func TestIntegrityMonitor_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := ledger.NewIntegrityMonitor(checkerFunc(func(context.Context) (*ledger.IntegrityReport, error) {
		cancel()
		return &ledger.IntegrityReport{Balanced: true}, nil
	}), 0, logger.Discard())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	<-done

	require.NotNil(t, m.Last())
}
