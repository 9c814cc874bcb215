package health

import "context"

// one dependency probed by the health endpoint
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Response represents the health check response
type Response struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}
