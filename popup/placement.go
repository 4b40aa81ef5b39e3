package popup

import "github.com/ZaguanLabs/cliptl"

// DefaultOffset is the distance between the cursor and the popup corner.
var DefaultOffset = cliptl.Point{X: 20, Y: 20}

// DefaultSize is the popup size used for placement when the sink does not
// report one.
var DefaultSize = cliptl.Size{Width: 400, Height: 200}

// Place returns the top-left corner of a popup of the given size shown next to
// anchor. The popup goes below and to the right of the cursor; on an axis where
// that would overflow the screen it flips to the other side of the cursor, and
// the result is finally clamped to the screen edges. An empty screen disables
// flipping and clamping.
func Place(anchor cliptl.Point, size cliptl.Size, screen cliptl.Rect) cliptl.Point {
	return placeWithOffset(anchor, size, screen, DefaultOffset)
}

func placeWithOffset(anchor cliptl.Point, size cliptl.Size, screen cliptl.Rect, offset cliptl.Point) cliptl.Point {
	pos := cliptl.Point{X: anchor.X + offset.X, Y: anchor.Y + offset.Y}
	if screen.Empty() {
		return pos
	}

	if pos.X+size.Width > screen.Right() {
		pos.X = anchor.X - offset.X - size.Width
	}
	if pos.Y+size.Height > screen.Bottom() {
		pos.Y = anchor.Y - offset.Y - size.Height
	}

	pos.X = clamp(pos.X, screen.X, screen.Right()-size.Width)
	pos.Y = clamp(pos.Y, screen.Y, screen.Bottom()-size.Height)
	return pos
}

// clamp keeps v within [lo, hi]; lo wins when the popup is larger than the screen.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
