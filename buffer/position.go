package buffer

// Position is the cursor of one view over a Buffer.
//
// Pos is the next byte to transfer; Size is the largest offset the view may
// address. Operations keep 0 <= Pos <= Size. A Position belongs to exactly
// one view and must not be shared between views.
type Position struct {
	Pos  int
	Size int
}

// NewPosition creates a position at offset 0 limited to size bytes.
func NewPosition(size int) *Position {
	if size < 0 {
		size = 0
	}

	return &Position{Size: size}
}

// Set moves the cursor to pos, clamped into [0, Size].
func (p *Position) Set(pos int) {
	switch {
	case pos < 0:
		p.Pos = 0
	case pos > p.Size:
		p.Pos = p.Size
	default:
		p.Pos = pos
	}
}

// Remaining returns Size - Pos.
func (p *Position) Remaining() int {
	return p.Size - p.Pos
}
