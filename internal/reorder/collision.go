package reorder

import "math"

type Point struct {
	X, Y float64
}

type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Translate shifts the rect by dy on the vertical axis only.
func (r Rect) Translate(dy float64) Rect {
	r.Y += dy
	return r
}

// Droppable is a drop zone measured at drop time. A zone with Container set
// stands for the whole list (an empty or unindexed area) and resolves to
// "append"; otherwise it is the item currently at Key.
type Droppable struct {
	Key       Key
	Container bool
	Rect      Rect
}

// Target converts the zone into a move destination.
func (d Droppable) Target() Target {
	if d.Container {
		return AtEnd(d.Key.Container)
	}
	return AtItem(d.Key)
}

// ClosestCenter returns the zone whose center is nearest to the center of
// active. Ties go to the zone listed first.
func ClosestCenter(active Rect, zones []Droppable) (Droppable, bool) {
	if len(zones) == 0 {
		return Droppable{}, false
	}
	c := active.Center()
	best, bestDist := 0, math.Inf(1)
	for i, z := range zones {
		zc := z.Rect.Center()
		d := math.Hypot(zc.X-c.X, zc.Y-c.Y)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return zones[best], true
}
