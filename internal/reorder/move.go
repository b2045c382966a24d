package reorder

import (
	"fmt"

	"budgetbook/internal/core"
)

// Target is a resolved drop destination. Append places the item at the end
// of Container and ignores Index.
type Target struct {
	Container core.ContainerID
	Index     int
	Append    bool
}

// AtItem targets the position currently held by k.
func AtItem(k Key) Target {
	return Target{Container: k.Container, Index: k.Index}
}

// AtEnd targets the end of container c.
func AtEnd(c core.ContainerID) Target {
	return Target{Container: c, Append: true}
}

// Move relocates the item at from to the target position. Within one
// container it is an array move; across containers it removes from the
// source and inserts into the target in the same Apply call. moved is false
// when source and destination are the same position, in which case the board
// is not touched.
func Move[T any](b Board[T], from Key, to Target) (moved bool, err error) {
	src, ok := b.Items(from.Container)
	if !ok || from.Index < 0 || from.Index >= len(src) {
		return false, fmt.Errorf("source %s: %w", from, ErrUnresolved)
	}
	dst, ok := b.Items(to.Container)
	if !ok {
		return false, fmt.Errorf("target %s: %w", to.Container, ErrUnresolved)
	}

	if from.Container == to.Container {
		index := to.Index
		if to.Append {
			index = len(src) - 1
		}
		if index < 0 || index >= len(src) {
			return false, fmt.Errorf("target %s-%d: %w", to.Container, index, ErrUnresolved)
		}
		if index == from.Index {
			return false, nil
		}
		if err := b.Apply(map[core.ContainerID][]T{from.Container: ArrayMove(src, from.Index, index)}); err != nil {
			return false, err
		}
		return true, nil
	}

	index := to.Index
	if to.Append {
		index = len(dst)
	}
	if index < 0 || index > len(dst) {
		return false, fmt.Errorf("target %s-%d: %w", to.Container, index, ErrUnresolved)
	}
	item := src[from.Index]

	nextSrc := make([]T, 0, len(src)-1)
	nextSrc = append(nextSrc, src[:from.Index]...)
	nextSrc = append(nextSrc, src[from.Index+1:]...)

	nextDst := make([]T, 0, len(dst)+1)
	nextDst = append(nextDst, dst[:index]...)
	nextDst = append(nextDst, item)
	nextDst = append(nextDst, dst[index:]...)

	err = b.Apply(map[core.ContainerID][]T{
		from.Container: nextSrc,
		to.Container:   nextDst,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ArrayMove returns a copy of items with the element at from moved to to.
func ArrayMove[T any](items []T, from, to int) []T {
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	out = append(out[:to], append([]T{items[from]}, out[to:]...)...)
	return out
}
