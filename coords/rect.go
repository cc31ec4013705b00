package coords

import "fmt"

// Space identifies the coordinate convention a Rect is expressed in.
type Space int

const (
	// SpaceDocument is document points: origin bottom-left, y up.
	SpaceDocument Space = iota
	// SpaceDisplay is display points: origin top-left, y down, same scale
	// as document points.
	SpaceDisplay
	// SpaceDevice is device pixels at a given DPI: origin top-left.
	SpaceDevice
)

func (s Space) String() string {
	switch s {
	case SpaceDocument:
		return "document"
	case SpaceDisplay:
		return "display"
	case SpaceDevice:
		return "device"
	}
	return fmt.Sprintf("space(%d)", int(s))
}

// Rect is an axis-aligned rectangle tagged with its coordinate space.
// X, Y is the origin corner in that space's convention (bottom-left for
// document space, top-left otherwise). DPI is meaningful only for
// SpaceDevice rects.
type Rect struct {
	X, Y, W, H float64
	Space      Space
	DPI        float64
}

// DocumentRect builds a rect in document points.
func DocumentRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h, Space: SpaceDocument}
}

// DisplayRect builds a rect in display points.
func DisplayRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h, Space: SpaceDisplay}
}

// DeviceRect builds a rect in device pixels at the given DPI.
func DeviceRect(x, y, w, h, dpi float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h, Space: SpaceDevice, DPI: dpi}
}

// Empty reports whether the rect has non-positive width or height.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// MaxX returns the far edge on the x axis.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the far edge on the y axis.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Intersects reports whether r and o share positive area. Both rects
// must carry the same space tag.
func (r Rect) Intersects(o Rect) (bool, error) {
	if err := sameSpace(r, o); err != nil {
		return false, err
	}
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY(), nil
}

// Touches reports whether r and o intersect or share an edge/corner
// (zero-area contact counts). Both rects must carry the same space tag.
func (r Rect) Touches(o Rect) (bool, error) {
	if err := sameSpace(r, o); err != nil {
		return false, err
	}
	return r.X <= o.MaxX() && o.X <= r.MaxX() && r.Y <= o.MaxY() && o.Y <= r.MaxY(), nil
}

// Union returns the smallest rect covering r and o.
func (r Rect) Union(o Rect) (Rect, error) {
	if err := sameSpace(r, o); err != nil {
		return Rect{}, err
	}
	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.MaxX(), o.MaxX())
	y1 := max(r.MaxY(), o.MaxY())
	out := r
	out.X, out.Y, out.W, out.H = x0, y0, x1-x0, y1-y0
	return out, nil
}

// Inflate grows the rect by d on every side, keeping its space tag.
func (r Rect) Inflate(d float64) Rect {
	r.X -= d
	r.Y -= d
	r.W += 2 * d
	r.H += 2 * d
	return r
}

// RectFromPoints returns the bounding rect of the given points, tagged
// with the given space.
func RectFromPoints(space Space, pts ...Point) Rect {
	if len(pts) == 0 {
		return Rect{Space: space}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY, Space: space}
}

func sameSpace(a, b Rect) error {
	if a.Space != b.Space {
		return fmt.Errorf("coordinate space mismatch: %s vs %s", a.Space, b.Space)
	}
	if a.Space == SpaceDevice && a.DPI != b.DPI {
		return fmt.Errorf("device DPI mismatch: %g vs %g", a.DPI, b.DPI)
	}
	return nil
}
