package health

import "time"

// HealthStatus estado de un componente.
type HealthStatus struct {
	Status  string `json:"status"` // ok | error | disabled
	Message string `json:"message,omitempty"`
}

// HealthResponse respuesta de GET /readyz.
type HealthResponse struct {
	Status     string                  `json:"status"` // ready | degraded | unavailable
	Version    string                  `json:"version,omitempty"`
	Commit     string                  `json:"commit,omitempty"`
	KeyPairID  string                  `json:"key_pair_id,omitempty"`
	Components map[string]HealthStatus `json:"components"`
	Timestamp  time.Time               `json:"timestamp"`
}
