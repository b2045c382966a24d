// Package reorder resolves drag gestures into moves across an open-ended set
// of ordered containers.
//
// Items are addressed by an ephemeral (container, index) Key derived from the
// current array positions. Keys are recomputed on every read and must never
// be kept across a mutation; a gesture captures its source key and item when
// the drag starts and checks the item is still there at drop time.
package reorder

import (
	"errors"
	"fmt"

	"budgetbook/internal/core"
)

// ErrUnresolved reports a source or target that does not map to any known
// container or index. Callers treat it as a no-op.
var ErrUnresolved = errors.New("reorder: unresolved position")

// Key addresses one item by container and position.
type Key struct {
	Container core.ContainerID
	Index     int
}

// String renders the key as "<container>-<index>".
func (k Key) String() string {
	return fmt.Sprintf("%s-%d", k.Container, k.Index)
}

// Board is the generic container capability the engine works against. Apply
// commits every change in one step or none at all.
type Board[T any] interface {
	Containers() []core.ContainerID
	Items(c core.ContainerID) ([]T, bool)
	Apply(changes map[core.ContainerID][]T) error
}

// Keys lists the current key of every item on the board in display order.
func Keys[T any](b Board[T]) []Key {
	var out []Key
	for _, c := range b.Containers() {
		items, ok := b.Items(c)
		if !ok {
			continue
		}
		for i := range items {
			out = append(out, Key{Container: c, Index: i})
		}
	}
	return out
}

// Lookup returns the item currently at k.
func Lookup[T any](b Board[T], k Key) (T, bool) {
	var zero T
	items, ok := b.Items(k.Container)
	if !ok || k.Index < 0 || k.Index >= len(items) {
		return zero, false
	}
	return items[k.Index], true
}

// Count returns the number of items across every container.
func Count[T any](b Board[T]) int {
	n := 0
	for _, c := range b.Containers() {
		items, _ := b.Items(c)
		n += len(items)
	}
	return n
}

// ListBoard adapts a single list behind getter and setter functions.
type ListBoard[T any] struct {
	id  core.ContainerID
	get func() []T
	set func([]T)
}

func NewListBoard[T any](id core.ContainerID, get func() []T, set func([]T)) *ListBoard[T] {
	return &ListBoard[T]{id: id, get: get, set: set}
}

func (b *ListBoard[T]) Containers() []core.ContainerID {
	return []core.ContainerID{b.id}
}

func (b *ListBoard[T]) Items(c core.ContainerID) ([]T, bool) {
	if c != b.id {
		return nil, false
	}
	return b.get(), true
}

func (b *ListBoard[T]) Apply(changes map[core.ContainerID][]T) error {
	for c := range changes {
		if c != b.id {
			return fmt.Errorf("container %s: %w", c, ErrUnresolved)
		}
	}
	if items, ok := changes[b.id]; ok {
		b.set(items)
	}
	return nil
}
