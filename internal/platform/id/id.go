package id

import "github.com/google/uuid"

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// Prefixed yields "<prefix>_<uuid>" identifiers, unique within and across processes.
type Prefixed struct {
	Prefix string
}

func (p Prefixed) New() string {
	if p.Prefix == "" {
		return uuid.NewString()
	}
	return p.Prefix + "_" + uuid.NewString()
}
