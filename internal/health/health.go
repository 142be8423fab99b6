// Package health provides node connectivity monitoring and status reporting.
package health

// SystemStatus represents the overall health state of the service.
type SystemStatus string

const (
	StatusOK       SystemStatus = "ok"
	StatusDegraded SystemStatus = "degraded"
)

// Report contains the detailed health report served on /health/detailed.
type Report struct {
	Status          SystemStatus `json:"status"`
	Connected       bool         `json:"connected"`
	ChainID         string       `json:"chain_id"`
	LatestBlock     uint64       `json:"latest_block"`
	ListerAddress   string       `json:"lister_address"`
	ContractAddress string       `json:"contract_address"`
	LatencyMs       int64        `json:"latency_ms"`
	Error           string       `json:"error,omitempty"`
}
