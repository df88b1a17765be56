package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusPending      Status = "pending"
	StatusConnected    Status = "connected"
)

type Platform struct {
	Name        string    `json:"name"`
	ConnectedAt time.Time `json:"connected_at"`
}

// NormalizeName trims surrounding whitespace; platform names are otherwise
// compared verbatim.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
