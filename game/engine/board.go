package engine

// Board is the allocated grid: the playable interior plus one ring of sea
// tiles. The ring is built by NewBoard and is never modified, so every
// interior tile has four in-grid neighbors. Lookups outside the allocated
// grid still go through the bounds check in At.
type Board struct {
	width  int
	height int
	tiles  [][]*Tile // tiles[y][x], including the sea ring
}

// NewBoard allocates a (width+2) x (height+2) grid whose border is sea and
// whose interior is normal land.
func NewBoard(width, height int) *Board {
	b := &Board{
		width:  width,
		height: height,
		tiles:  make([][]*Tile, height+2),
	}
	for y := 0; y < height+2; y++ {
		b.tiles[y] = make([]*Tile, width+2)
		for x := 0; x < width+2; x++ {
			border := x == 0 || y == 0 || x == width+1 || y == height+1
			b.tiles[y][x] = newTile(x, y, border)
		}
	}
	return b
}

// Width returns the interior width.
func (b *Board) Width() int { return b.width }

// Height returns the interior height.
func (b *Board) Height() int { return b.height }

// InGrid reports whether (x, y) lies in the allocated grid, sea ring included.
func (b *Board) InGrid(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width+2 && y < b.height+2
}

// InInterior reports whether p is a playable island coordinate.
func (b *Board) InInterior(p Position) bool {
	return p.X >= 1 && p.Y >= 1 && p.X <= b.width && p.Y <= b.height
}

// At returns the tile at p, or false if p is outside the allocated grid.
func (b *Board) At(p Position) (*Tile, bool) {
	if !b.InGrid(p.X, p.Y) {
		return nil, false
	}
	return b.tiles[p.Y][p.X], true
}

// Neighbor returns the tile one step from p in direction d.
func (b *Board) Neighbor(p Position, d Direction) (*Tile, bool) {
	next, ok := p.Step(d)
	if !ok {
		return nil, false
	}
	return b.At(next)
}

// Interior lists interior coordinates row by row.
func (b *Board) Interior() []Position {
	out := make([]Position, 0, b.width*b.height)
	for y := 1; y <= b.height; y++ {
		for x := 1; x <= b.width; x++ {
			out = append(out, Position{X: x, Y: y})
		}
	}
	return out
}

// Each calls fn for every allocated tile, sea ring included.
func (b *Board) Each(fn func(t *Tile)) {
	for _, row := range b.tiles {
		for _, t := range row {
			fn(t)
		}
	}
}

// Rows returns snapshots of the interior, Rows()[y-1][x-1].
func (b *Board) Rows() [][]TileView {
	rows := make([][]TileView, b.height)
	for y := 1; y <= b.height; y++ {
		row := make([]TileView, b.width)
		for x := 1; x <= b.width; x++ {
			row[x-1] = b.tiles[y][x].View()
		}
		rows[y-1] = row
	}
	return rows
}

// CountLevel counts interior tiles at the given flood level.
func (b *Board) CountLevel(level FloodLevel) int {
	count := 0
	for y := 1; y <= b.height; y++ {
		for x := 1; x <= b.width; x++ {
			if b.tiles[y][x].level == level {
				count++
			}
		}
	}
	return count
}
