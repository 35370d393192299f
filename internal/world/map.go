package world

import "fmt"

// DefaultMapSize is the side length of the square city grid.
const DefaultMapSize = 30

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int
}

// Orientation tags river flow and bridge direction.
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

// RiverTile is one water cell.
type RiverTile struct {
	X, Y int
	Flow Orientation
}

// Bridge crosses the river at a fixed cell.
type Bridge struct {
	X, Y        int
	Orientation Orientation
}

// DecorationKind enumerates static scenery.
type DecorationKind uint8

const (
	DecorationTree DecorationKind = iota
	DecorationBush
	DecorationFlower
	DecorationRock
	DecorationLamp
	DecorationBench
	DecorationFountain

	decorationKindCount
)

var decorationKindNames = [decorationKindCount]string{
	"tree", "bush", "flower", "rock", "lamp", "bench", "fountain",
}

// DecorationKinds returns every kind in declaration order.
func DecorationKinds() []DecorationKind {
	kinds := make([]DecorationKind, decorationKindCount)
	for i := range kinds {
		kinds[i] = DecorationKind(i)
	}
	return kinds
}

func (k DecorationKind) String() string {
	if k < decorationKindCount {
		return decorationKindNames[k]
	}
	return fmt.Sprintf("decoration(%d)", uint8(k))
}

// Decoration is an immutable piece of scenery.
type Decoration struct {
	Kind    DecorationKind
	X, Y    int
	Variant int
}

// Map holds the static terrain generated once at startup.
type Map struct {
	Size        int
	River       []RiverTile
	Bridges     []Bridge
	Decorations []Decoration

	paths map[Cell]bool
	river map[Cell]int // cell → index into River
	tint  []float64    // Size*Size, in [-1, 1]
}

// NewMap creates an empty map of the given size.
func NewMap(size int) *Map {
	return &Map{
		Size:  size,
		paths: make(map[Cell]bool),
		river: make(map[Cell]int),
		tint:  make([]float64, size*size),
	}
}

// Center returns the central grid coordinate used for layout and wandering.
func (m *Map) Center() int {
	return m.Size / 2
}

// InBounds reports whether (x, y) lies on the grid.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Size && y < m.Size
}

// IsPath reports whether (x, y) is a walkway cell.
func (m *Map) IsPath(x, y int) bool {
	return m.paths[Cell{x, y}]
}

// RiverAt returns the river tile at (x, y), if any.
func (m *Map) RiverAt(x, y int) (RiverTile, bool) {
	i, ok := m.river[Cell{x, y}]
	if !ok {
		return RiverTile{}, false
	}
	return m.River[i], true
}

// Tint returns the ground shading offset for (x, y), in [-1, 1].
func (m *Map) Tint(x, y int) float64 {
	if !m.InBounds(x, y) {
		return 0
	}
	return m.tint[y*m.Size+x]
}

func (m *Map) addPath(x, y int) {
	if m.InBounds(x, y) {
		m.paths[Cell{x, y}] = true
	}
}

func (m *Map) addRiver(t RiverTile) {
	c := Cell{t.X, t.Y}
	if !m.InBounds(t.X, t.Y) {
		return
	}
	if _, dup := m.river[c]; dup {
		return
	}
	m.river[c] = len(m.River)
	m.River = append(m.River, t)
}
