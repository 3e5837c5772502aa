package relation

import (
	"errors"
	"fmt"

	"github.com/persistorai/relations/internal/models"
)

// Stop is returned by a visitor to end a walk early. The walk releases its
// cursor and Each returns nil.
var Stop = errors.New("stop walk") //nolint:errname,revive // reads as a control signal, like fs.SkipAll.

// TraversalError reports a store failure part-way through a walk. Visited
// counts the nodes fully visited before the failure and Last holds the last
// of them (nil when none were), so callers can decide whether to resume.
type TraversalError struct {
	Origin  string
	Visited int
	Last    *models.Node
	Err     error
}

// Error implements the error interface.
func (e *TraversalError) Error() string {
	return fmt.Sprintf("traversing relationships of %q (after %d nodes): %v", e.Origin, e.Visited, e.Err)
}

// Unwrap lets errors.Is match both models.ErrTraversalFailed and the store's cause.
func (e *TraversalError) Unwrap() []error {
	return []error{models.ErrTraversalFailed, e.Err}
}
