package engine

// Tile is one cell of the board. Only the engine changes occupancy and
// artifact presence; sea tiles never change at all.
type Tile struct {
	pos      Position
	level    FloodLevel
	sea      bool
	heliport bool
	artifact bool
	occupied bool
}

func newTile(x, y int, sea bool) *Tile {
	t := &Tile{pos: Position{X: x, Y: y}, level: Normal, sea: sea}
	if sea {
		t.level = Sunk
	}
	return t
}

// Position returns the tile's fixed coordinates.
func (t *Tile) Position() Position { return t.pos }

// Level returns the current flood level.
func (t *Tile) Level() FloodLevel { return t.level }

func (t *Tile) IsSea() bool { return t.sea }
func (t *Tile) IsHeliport() bool { return t.heliport }
func (t *Tile) HasArtifact() bool { return t.artifact }
func (t *Tile) IsOccupied() bool { return t.occupied }

// IsPassable reports whether the adventurer may enter the tile.
func (t *Tile) IsPassable() bool {
	return t.level != Sunk && !t.sea && !t.occupied
}

// ShoreUp raises a flooded tile back to normal. It reports false and changes
// nothing when the tile is normal, sunk, or sea.
func (t *Tile) ShoreUp() bool {
	if t.sea || t.level != Flooded {
		return false
	}
	t.level = Normal
	return true
}

// FloodOneStep lowers the tile one level. Sunk is terminal: flooding a sunk
// tile reports false and leaves it sunk.
func (t *Tile) FloodOneStep() bool {
	if t.sea || t.level <= Sunk {
		return false
	}
	t.level--
	return true
}

func (t *Tile) setHeliport(v bool) {
	if t.sea {
		return
	}
	t.heliport = v
}

func (t *Tile) setArtifact(v bool) {
	if t.sea {
		return
	}
	t.artifact = v
}

func (t *Tile) setOccupied(v bool) {
	if t.sea {
		return
	}
	t.occupied = v
}

// View returns a snapshot of the tile.
func (t *Tile) View() TileView {
	return TileView{
		X:        t.pos.X,
		Y:        t.pos.Y,
		Level:    t.level,
		Sea:      t.sea,
		Heliport: t.heliport,
		Artifact: t.artifact,
		Occupied: t.occupied,
	}
}
