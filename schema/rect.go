package schema

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	X, Y          int
	Width, Height int
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersects reports whether r and other share any area. Empty rectangles
// intersect nothing.
func (r Rect) Intersects(other Rect) bool {
	if r.Empty() || other.Empty() {
		return false
	}
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// WorldRect is the area the level covers in world pixels.
func (l *Level) WorldRect() Rect {
	return Rect{X: l.WorldX, Y: l.WorldY, Width: l.PxWid, Height: l.PxHei}
}

// Rect is the entity's bounding box in level pixels. Px is the pivot
// point, so the box is shifted by the pivot fraction of its size.
func (e *EntityInstance) Rect() Rect {
	return Rect{
		X:      e.Px[0] - int(e.Pivot[0]*float64(e.Width)),
		Y:      e.Px[1] - int(e.Pivot[1]*float64(e.Height)),
		Width:  e.Width,
		Height: e.Height,
	}
}

// OverlappingLevels returns every pair of levels in the same level list
// whose world rectangles intersect. Levels in different worlds never
// overlap.
func (p *Project) OverlappingLevels() [][2]*Level {
	var out [][2]*Level
	check := func(levels []Level) {
		for i := range levels {
			for j := i + 1; j < len(levels); j++ {
				if levels[i].WorldRect().Intersects(levels[j].WorldRect()) {
					out = append(out, [2]*Level{&levels[i], &levels[j]})
				}
			}
		}
	}
	check(p.Levels)
	for i := range p.Worlds {
		check(p.Worlds[i].Levels)
	}
	return out
}
