package health

import (
	"context"
	"sync"
	"time"

	"github.com/dimitribekale/ai-marketplace/internal/metrics"
)

const (
	defaultCheckInterval = 10 * time.Second
	defaultProbeTimeout  = 5 * time.Second
)

// NodeProber reports the latest block height of the configured node. It must
// return once ctx is done.
type NodeProber interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Identity carries the static details included in every report.
type Identity struct {
	ChainID         string
	ListerAddress   string
	ContractAddress string
}

// Monitor probes the node and caches the result between checks.
type Monitor struct {
	prober   NodeProber
	identity Identity
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport *Report
	checking   bool
}

// NewMonitor creates a new health monitor.
func NewMonitor(prober NodeProber, identity Identity) *Monitor {
	return &Monitor{
		prober:   prober,
		identity: identity,
		interval: defaultCheckInterval,
		timeout:  defaultProbeTimeout,
		now:      time.Now,
	}
}

// Check returns the node health, probing at most once per interval. While a
// check is in flight other callers get the previous report.
func (m *Monitor) Check(ctx context.Context) Report {
	m.mu.Lock()
	if m.lastReport != nil && (m.checking || m.now().Sub(m.lastCheck) < m.interval) {
		report := *m.lastReport
		m.mu.Unlock()
		return report
	}
	m.checking = true
	m.mu.Unlock()

	report := m.checkNode(ctx)

	m.mu.Lock()
	m.checking = false
	m.lastCheck = m.now()
	m.lastReport = &report
	m.mu.Unlock()

	return report
}

func (m *Monitor) checkNode(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	report := Report{
		Status:          StatusOK,
		Connected:       true,
		ChainID:         m.identity.ChainID,
		ListerAddress:   m.identity.ListerAddress,
		ContractAddress: m.identity.ContractAddress,
	}

	start := m.now()
	latest, err := m.prober.BlockNumber(ctx)
	report.LatencyMs = m.now().Sub(start).Milliseconds()
	if err != nil {
		report.Status = StatusDegraded
		report.Connected = false
		report.Error = err.Error()
		metrics.NodeConnected.Set(0)
		return report
	}

	report.LatestBlock = latest
	metrics.NodeConnected.Set(1)
	metrics.NodeLatestBlock.Set(float64(latest))
	return report
}

// Connected reports whether the node answered the last probe.
func (m *Monitor) Connected(ctx context.Context) bool {
	return m.Check(ctx).Connected
}
