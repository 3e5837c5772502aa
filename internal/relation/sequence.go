package relation

import (
	"context"
	"errors"

	"github.com/persistorai/relations/internal/models"
)

// Sequence is the array-like read surface shared by collections and plain
// slices. Hosts that need sequence behaviour should accept a Sequence.
type Sequence[T any] interface {
	Walker[T]
	Size(ctx context.Context) (int, error)
	At(ctx context.Context, index int) (T, bool, error)
	IsEmpty(ctx context.Context) (bool, error)
	ToSlice(ctx context.Context) ([]T, error)
}

// SliceSequence adapts an in-memory slice to Sequence.
type SliceSequence[T any] []T

var _ Sequence[models.Node] = SliceSequence[models.Node](nil)

// Each visits the elements in order. Stop ends the walk without error.
func (s SliceSequence[T]) Each(_ context.Context, visit func(T) error) error {
	for _, item := range s {
		if err := visit(item); err != nil {
			if errors.Is(err, Stop) {
				return nil
			}

			return err
		}
	}

	return nil
}

func (s SliceSequence[T]) Size(context.Context) (int, error) { return len(s), nil }

func (s SliceSequence[T]) At(_ context.Context, index int) (T, bool, error) {
	var zero T
	if index < 0 {
		return zero, false, models.InvalidArgument("negative index %d", index)
	}

	if index >= len(s) {
		return zero, false, nil
	}

	return s[index], true, nil
}

func (s SliceSequence[T]) IsEmpty(context.Context) (bool, error) { return len(s) == 0, nil }

// ToSlice returns a copy of the underlying slice.
func (s SliceSequence[T]) ToSlice(context.Context) ([]T, error) {
	out := make([]T, len(s))
	copy(out, s)

	return out, nil
}
