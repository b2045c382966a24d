package reorder

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"
)

// State is the phase of a drag gesture.
type State int

const (
	Idle State = iota
	Armed
	Dragging
	Dropped
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Dragging:
		return "dragging"
	case Dropped:
		return "dropped"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome reports what a finished gesture did.
type Outcome int

const (
	// Tap is a press released before activation; the row's detail action applies.
	Tap Outcome = iota
	// Moved means the board was mutated.
	Moved
	// NoOp is a drag that resolved to its own position or to nothing.
	NoOp
	// Aborted is a cancelled drag, or a press abandoned by moving too far
	// before the hold delay elapsed.
	Aborted
)

// Activation gates when a press becomes a drag. With a Delay the press must
// be held that long without moving more than Tolerance; moving further first
// aborts the press. With only a Distance the drag activates once the pointer
// has moved that far.
type Activation struct {
	Delay     time.Duration
	Tolerance float64
	Distance  float64
}

var (
	// TouchActivation separates a tap from press-and-hold reordering.
	TouchActivation = Activation{Delay: 250 * time.Millisecond, Tolerance: 5}
	// PointerActivation starts a drag after a short pointer movement.
	PointerActivation = Activation{Distance: 8}
)

var ErrGestureActive = errors.New("reorder: gesture already in progress")

// Overlay is the transient drag preview. It exists only while Dragging and is
// never written to the board.
type Overlay[T any] struct {
	Item   T
	Source Key
	Rect   Rect
}

// Gesture drives one drag at a time through
// Idle -> Armed -> Dragging -> Dropped|Cancelled -> Idle.
// Only vertical pointer movement is interpreted.
type Gesture[T any] struct {
	board Board[T]
	act   Activation

	state   State
	pressed bool
	pressAt time.Time
	origin  Point
	source  Key
	item    T
	rect    Rect
	dy      float64
}

func NewGesture[T any](board Board[T], act Activation) *Gesture[T] {
	return &Gesture[T]{board: board, act: act}
}

func (g *Gesture[T]) State() State {
	return g.state
}

// Press starts tracking a press on the item at source, whose row occupies
// rect. The source key and item are captured here and used at drop time.
func (g *Gesture[T]) Press(source Key, rect Rect, at Point, now time.Time) error {
	if g.state != Idle || g.pressed {
		return ErrGestureActive
	}
	item, ok := Lookup(g.board, source)
	if !ok {
		return fmt.Errorf("press %s: %w", source, ErrUnresolved)
	}
	g.pressed = true
	g.pressAt = now
	g.origin = at
	g.source = source
	g.item = item
	g.rect = rect
	g.dy = 0
	return nil
}

// Hold advances time for a press that has not moved. It arms the gesture once
// the activation delay has elapsed.
func (g *Gesture[T]) Hold(now time.Time) State {
	if g.pressed && g.state == Idle && g.act.Delay > 0 && now.Sub(g.pressAt) >= g.act.Delay {
		g.state = Armed
	}
	return g.state
}

// MoveTo tracks the pointer. Before activation it decides between arming and
// abandoning the press; once armed the first movement starts the drag.
func (g *Gesture[T]) MoveTo(at Point, now time.Time) State {
	if !g.pressed {
		return g.state
	}
	dist := math.Hypot(at.X-g.origin.X, at.Y-g.origin.Y)

	if g.state == Idle {
		switch {
		case g.act.Delay > 0:
			if now.Sub(g.pressAt) < g.act.Delay {
				if dist > g.act.Tolerance {
					g.reset()
				}
				return g.state
			}
			if dist > g.act.Tolerance {
				g.reset()
				return g.state
			}
			g.state = Armed
		case dist >= g.act.Distance:
			g.state = Armed
		default:
			return g.state
		}
	}

	g.dy = at.Y - g.origin.Y
	if g.state == Armed && dist > 0 {
		g.state = Dragging
	}
	return g.state
}

// Overlay returns the drag preview while Dragging.
func (g *Gesture[T]) Overlay() (Overlay[T], bool) {
	if g.state != Dragging {
		return Overlay[T]{}, false
	}
	return Overlay[T]{Item: g.item, Source: g.source, Rect: g.rect.Translate(g.dy)}, true
}

// Release ends the gesture. A drag resolves its destination among zones by
// closest center and commits the move; anything unresolvable is a no-op.
func (g *Gesture[T]) Release(zones []Droppable) (Outcome, error) {
	defer g.reset()

	switch g.state {
	case Idle:
		if g.pressed {
			return Tap, nil
		}
		return NoOp, nil
	case Armed:
		return NoOp, nil
	case Dragging:
	default:
		return NoOp, nil
	}

	g.state = Dropped
	zone, ok := ClosestCenter(g.rect.Translate(g.dy), zones)
	if !ok {
		return NoOp, nil
	}
	source, ok := g.locateSource()
	if !ok {
		return NoOp, nil
	}
	moved, err := Move(g.board, source, zone.Target())
	if errors.Is(err, ErrUnresolved) {
		return NoOp, nil
	}
	if err != nil {
		return NoOp, err
	}
	if !moved {
		return NoOp, nil
	}
	return Moved, nil
}

// locateSource returns where the pressed item sits now. Edits during the drag
// can shift indexes, so the key captured at press is checked against the
// captured item and, when it no longer matches, the item is searched for.
func (g *Gesture[T]) locateSource() (Key, bool) {
	if cur, ok := Lookup(g.board, g.source); ok && reflect.DeepEqual(cur, g.item) {
		return g.source, true
	}
	for _, k := range Keys(g.board) {
		if cur, ok := Lookup(g.board, k); ok && reflect.DeepEqual(cur, g.item) {
			return k, true
		}
	}
	return Key{}, false
}

// Cancel abandons the gesture without touching the board.
func (g *Gesture[T]) Cancel() Outcome {
	if g.state != Idle || g.pressed {
		g.state = Cancelled
	}
	g.reset()
	return Aborted
}

func (g *Gesture[T]) reset() {
	var zero T
	g.state = Idle
	g.pressed = false
	g.item = zero
	g.dy = 0
}
