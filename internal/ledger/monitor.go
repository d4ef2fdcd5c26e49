package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/homebooks/ledger/pkg/logger"
)

// DefaultMonitorInterval is the default interval between integrity checks
const DefaultMonitorInterval = time.Hour

// IntegrityChecker runs one full ledger check
type IntegrityChecker interface {
	CheckIntegrity(ctx context.Context) (*IntegrityReport, error)
}

// IntegrityMonitor periodically checks the ledger and keeps the last report
// for the health endpoint. Violations are logged, never repaired.
type IntegrityMonitor struct {
	checker  IntegrityChecker
	interval time.Duration
	logger   *logger.Logger

	mu   sync.RWMutex
	last *IntegrityReport
}

// NewIntegrityMonitor creates a monitor. A non-positive interval falls back
// to DefaultMonitorInterval.
func NewIntegrityMonitor(checker IntegrityChecker, interval time.Duration, log *logger.Logger) *IntegrityMonitor {
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	return &IntegrityMonitor{
		checker:  checker,
		interval: interval,
		logger:   log.WithComponent("integrity_monitor"),
	}
}

// Run checks immediately and then on every tick until ctx is cancelled
func (m *IntegrityMonitor) Run(ctx context.Context) {
	m.logger.Info("integrity monitor started", "interval", m.interval)

	m.RunOnce(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("integrity monitor stopped")
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single check and stores its report. A check that fails
// to run keeps the previous report.
func (m *IntegrityMonitor) RunOnce(ctx context.Context) {
	start := time.Now()
	report, err := m.checker.CheckIntegrity(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Error("integrity check failed to run", "error", err)
		}
		return
	}

	m.mu.Lock()
	m.last = report
	m.mu.Unlock()

	m.logger.Debug("integrity check completed", "ok", report.OK(), "duration_ms", time.Since(start).Milliseconds())
}

// Last returns the most recent report, or nil before the first check
func (m *IntegrityMonitor) Last() *IntegrityReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Health fails when the last completed check found a violation. No report
// yet counts as healthy.
func (m *IntegrityMonitor) Health(context.Context) error {
	r := m.Last()
	if r == nil || r.OK() {
		return nil
	}
	return fmt.Errorf("%w: debits %d, credits %d, %d unpaired transaction(s)",
		ErrLedgerImbalanced, r.Debits, r.Credits, len(r.UnpairedTransactions))
}
