package engine

// Region is a fixed band of tiles. Each end of turn floods exactly one tile
// drawn from every region, so flooding spreads across the whole island.
type Region struct {
	Index int        `json:"index"`
	Name  string     `json:"name"`
	Band  []Position `json:"band"`
}

// floodRegions partitions the interior into one band per row, north to south.
var floodRegions = [RegionCount]Region{
	{Index: 0, Name: "north shore", Band: rowBand(1)},
	{Index: 1, Name: "north ridge", Band: rowBand(2)},
	{Index: 2, Name: "upper valley", Band: rowBand(3)},
	{Index: 3, Name: "lower valley", Band: rowBand(4)},
	{Index: 4, Name: "south ridge", Band: rowBand(5)},
	{Index: 5, Name: "south shore", Band: rowBand(6)},
}

func rowBand(y int) []Position {
	band := make([]Position, 0, Width)
	for x := 1; x <= Width; x++ {
		band = append(band, Position{X: x, Y: y})
	}
	return band
}

// FloodRegions returns a copy of the region table.
func FloodRegions() []Region {
	out := make([]Region, len(floodRegions))
	for i, r := range floodRegions {
		band := make([]Position, len(r.Band))
		copy(band, r.Band)
		out[i] = Region{Index: r.Index, Name: r.Name, Band: band}
	}
	return out
}

// RegionOf returns the index of the region whose band contains p.
func RegionOf(p Position) (int, bool) {
	for _, r := range floodRegions {
		for _, q := range r.Band {
			if q == p {
				return r.Index, true
			}
		}
	}
	return -1, false
}

// Rand is the random source used for setup and flooding. *rand.Rand
// satisfies it; tests inject scripted sources.
type Rand interface {
	Intn(n int) int
}

func (r Region) draw(rng Rand) Position {
	return r.Band[rng.Intn(len(r.Band))]
}
