package model

// HealthStatus is returned by the health endpoint of the webhook server
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Ledger  string `json:"ledger,omitempty"`
}
