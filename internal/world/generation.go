// Terrain generation: walkways, the river course, bridges, scenery and a
// simplex-noise ground tint.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/shainyguy/followercity/internal/entropy"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Size          int   // Grid side length
	Seed          int64 // Random seed (0 = random)
	FlowerTries   int   // Random flower placement attempts
	FlowerDensity float64
}

// DefaultGenConfig returns the stock 30x30 configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:          DefaultMapSize,
		Seed:          0,
		FlowerTries:   50,
		FlowerDensity: 0.3,
	}
}

// Fixed scenery, in cells of the stock 30x30 grid. Cells outside a smaller
// grid are dropped.
var (
	treeCells = []Cell{
		{1, 1}, {2, 2}, {1, 3}, {3, 1}, {2, 5}, {1, 7}, {3, 8}, {2, 10},
		{27, 2}, {28, 3}, {26, 4}, {29, 1}, {27, 6}, {28, 8}, {26, 10},
		{2, 26}, {4, 27}, {3, 28}, {6, 27}, {8, 28}, {5, 25},
		{25, 26}, {27, 27}, {26, 28}, {23, 27}, {28, 25},
		{8, 8}, {9, 7}, {7, 9}, {21, 8}, {22, 7}, {20, 9},
		{8, 21}, {9, 22}, {7, 20}, {21, 21}, {22, 22}, {20, 20},
		{15, 5}, {15, 7}, {15, 9}, {15, 21}, {15, 23}, {15, 25},
	}
	bushCells = []Cell{
		{4, 4}, {6, 6}, {24, 5}, {5, 24}, {25, 26}, {26, 25},
		{10, 3}, {3, 10}, {27, 10}, {10, 27}, {12, 6}, {6, 12},
		{24, 12}, {12, 24}, {18, 4}, {4, 18}, {18, 26}, {26, 18},
	}
	rockCells = []Cell{
		{1, 5}, {5, 1}, {28, 20}, {20, 28}, {18, 2}, {2, 18},
		{25, 5}, {5, 25}, {12, 1}, {1, 12}, {28, 12}, {12, 28},
	}
	lampCells = []Cell{
		{15, 5}, {15, 10}, {15, 20}, {15, 25}, {5, 15}, {10, 15},
		{20, 15}, {25, 15}, {10, 10}, {20, 10}, {10, 20}, {20, 20},
	}
	benchCells = []Cell{
		{9, 9}, {21, 9}, {9, 21}, {21, 21}, {15, 12}, {15, 18}, {12, 15}, {18, 15},
	}
	fountainCells = []Cell{{15, 15}, {8, 15}, {22, 15}}

	// The river runs two cells wide from the north edge to the south-east corner.
	riverCells = []Cell{
		{5, 0}, {5, 1}, {5, 2}, {6, 3}, {6, 4}, {7, 5}, {7, 6}, {7, 7},
		{6, 0}, {6, 1}, {6, 2}, {7, 3}, {7, 4}, {8, 5}, {8, 6}, {8, 7},
		{8, 8}, {9, 9}, {10, 9}, {11, 10}, {12, 10}, {13, 11},
		{9, 8}, {10, 8}, {11, 9}, {12, 9}, {13, 10}, {14, 10},
		{14, 11}, {15, 11}, {16, 11}, {14, 12}, {15, 12}, {16, 12}, {17, 12},
		{14, 13}, {15, 13}, {16, 13}, {17, 13},
		{17, 14}, {17, 15}, {18, 16}, {18, 17}, {19, 18}, {19, 19},
		{18, 14}, {18, 15}, {19, 16}, {19, 17}, {20, 18}, {20, 19},
		{20, 20}, {21, 21}, {22, 22}, {23, 23}, {24, 24},
		{21, 20}, {22, 21}, {23, 22}, {24, 23}, {25, 24},
	}
	bridgeSpots = []Bridge{
		{X: 6, Y: 2, Orientation: Horizontal},
		{X: 7, Y: 6, Orientation: Horizontal},
		{X: 10, Y: 9, Orientation: Vertical},
		{X: 15, Y: 11, Orientation: Vertical},
		{X: 18, Y: 16, Orientation: Horizontal},
	}
)

// Generate builds the static terrain for a new city.
func Generate(cfg GenConfig) *Map {
	if cfg.Size <= 0 {
		cfg.Size = DefaultMapSize
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := entropy.NewSeeded(seed + 100)

	m := NewMap(cfg.Size)
	placePaths(m)
	placeRiver(m)

	tintNoise := opensimplex.NewNormalized(seed)
	flowerNoise := opensimplex.NewNormalized(seed + 1)
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			// Normalized noise is in [0, 1]; map to [-1, 1].
			m.tint[y*m.Size+x] = octaveNoise(tintNoise, float64(x), float64(y), 3, 0.15, 0.5)*2 - 1
		}
	}

	placeDecorations(m, rng, flowerNoise, cfg)
	return m
}

func placePaths(m *Map) {
	c := m.Center()
	for i := 0; i < m.Size; i++ {
		m.addPath(c, i)
		m.addPath(i, c)
	}
	for i := 0; i < c; i++ {
		m.addPath(i, i)
		m.addPath(m.Size-1-i, i)
	}
}

func placeRiver(m *Map) {
	for _, c := range riverCells {
		flow := Horizontal
		if c.Y < 10 {
			flow = Vertical
		}
		m.addRiver(RiverTile{X: c.X, Y: c.Y, Flow: flow})
	}
	for _, b := range bridgeSpots {
		if _, ok := m.RiverAt(b.X, b.Y); ok {
			m.Bridges = append(m.Bridges, b)
		}
	}
}

func placeDecorations(m *Map, rng entropy.Source, flowerNoise opensimplex.Noise, cfg GenConfig) {
	fixed := func(kind DecorationKind, cells []Cell, variants int) {
		for _, c := range cells {
			if !m.InBounds(c.X, c.Y) {
				continue
			}
			v := 0
			if variants > 1 {
				v = rng.Intn(variants)
			}
			m.Decorations = append(m.Decorations, Decoration{Kind: kind, X: c.X, Y: c.Y, Variant: v})
		}
	}

	fixed(DecorationTree, treeCells, 3)
	fixed(DecorationBush, bushCells, 1)

	// Flowers cluster where the noise field is high and avoid walkways and water.
	if m.Size > 4 {
		span := m.Size - 4
		for i := 0; i < cfg.FlowerTries; i++ {
			x := 2 + rng.Intn(span)
			y := 2 + rng.Intn(span)
			if m.IsPath(x, y) {
				continue
			}
			if _, wet := m.RiverAt(x, y); wet {
				continue
			}
			if octaveNoise(flowerNoise, float64(x), float64(y), 2, 0.2, 0.5) < cfg.FlowerDensity {
				continue
			}
			m.Decorations = append(m.Decorations, Decoration{
				Kind: DecorationFlower, X: x, Y: y, Variant: rng.Intn(5),
			})
		}
	}

	fixed(DecorationRock, rockCells, 1)
	fixed(DecorationLamp, lampCells, 1)
	fixed(DecorationBench, benchCells, 1)
	fixed(DecorationFountain, fountainCells, 1)
}

// octaveNoise sums several octaves of simplex noise, normalized to the
// generator's range.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
