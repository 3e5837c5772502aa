package models

import (
	"fmt"
	"time"
)

// Edge represents a directed relationship between two nodes.
type Edge struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Relation   string         `json:"relation"`
	Properties map[string]any `json:"properties"`
	Weight     float64        `json:"weight"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Endpoints returns the source and target of a relationship of the given
// direction declared on origin towards other. Incoming declarations point
// from other to origin; Outgoing and Both point from origin to other.
func Endpoints(origin, other string, dir Direction) (source, target string) {
	if dir == Incoming {
		return other, origin
	}

	return origin, other
}

// AppendRequest is the payload for adding relationships to a collection.
type AppendRequest struct {
	Targets []string `json:"targets"`
}

// maxAppendTargets caps how many relationships a single request may create.
const maxAppendTargets = 100

// Validate checks AppendRequest fields.
func (r *AppendRequest) Validate() error {
	if len(r.Targets) == 0 {
		return ErrMissingTarget
	}

	if len(r.Targets) > maxAppendTargets {
		return fmt.Errorf("at most %d targets per request", maxAppendTargets)
	}

	for _, t := range r.Targets {
		if t == "" {
			return ErrMissingTarget
		}

		if len(t) > 255 {
			return ErrFieldTooLong("target", 255)
		}
	}

	return nil
}
