package world

import (
	"fmt"
	"strings"
)

// Kind names a lattice layout.
type Kind string

const (
	KindGrid       Kind = "grid" // 4-connected rectangular grid
	KindHex        Kind = "hex"  // hexagonal cells, 6 neighbors
	KindTriangular Kind = "tri"  // triangular cells, 3 neighbors
	KindCustom     Kind = "custom"
)

// ParseKind maps a user-facing topology name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grid", "2d", "square":
		return KindGrid, nil
	case "hex", "hexagonal":
		return KindHex, nil
	case "tri", "triangular":
		return KindTriangular, nil
	default:
		return "", fmt.Errorf("unknown topology %q (valid: grid, hex, tri)", s)
	}
}

// Topology is the read-only view of a graph that simulation passes walk.
type Topology interface {
	Nodes() []Key
	Neighbors(Key) []Key
	Has(Key) bool
}

// Graph is an undirected graph with a stable node order.
// Nodes() and Neighbors() always enumerate in insertion order, which is what
// makes simulation passes over the graph reproducible.
type Graph struct {
	kind   Kind
	width  int
	height int

	order []Key
	adj   map[Key][]Key
	owner map[Key]Key // border node → the single interior node it mirrors

	around func(Key) []Key // lattice positions around a key, in or out of bounds
}

// NewGraph creates an empty custom graph. Nodes and edges are added by hand.
func NewGraph() *Graph {
	return &Graph{
		kind:  KindCustom,
		adj:   make(map[Key][]Key),
		owner: make(map[Key]Key),
	}
}

// NewLattice builds a width×height lattice of the given kind.
// Nodes are enumerated column-major: for x { for y }.
func NewLattice(kind Kind, width, height int) (*Graph, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("lattice dimensions must be positive, got %dx%d", width, height)
	}
	g := NewGraph()
	g.kind = kind
	g.width = width
	g.height = height

	switch kind {
	case KindGrid:
		g.around = gridAround
	case KindHex:
		g.around = hexAround
	case KindTriangular:
		g.around = triAround
	default:
		return nil, fmt.Errorf("unsupported lattice kind %q", kind)
	}

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			g.AddNode(Key{X: x, Y: y})
		}
	}
	for _, k := range g.order {
		for _, n := range g.around(k) {
			if g.InBounds(n) {
				g.AddEdge(k, n)
			}
		}
	}
	return g, nil
}

// AddNode inserts a node. Returns false if it already existed.
func (g *Graph) AddNode(k Key) bool {
	if _, ok := g.adj[k]; ok {
		return false
	}
	g.adj[k] = nil
	g.order = append(g.order, k)
	return true
}

// AddEdge connects a and b, adding either node if missing.
// Self loops and duplicate edges are ignored.
func (g *Graph) AddEdge(a, b Key) {
	if a == b {
		return
	}
	g.AddNode(a)
	g.AddNode(b)
	for _, n := range g.adj[a] {
		if n == b {
			return
		}
	}
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
}

// Nodes returns every node in enumeration order. The slice must not be modified.
func (g *Graph) Nodes() []Key {
	return g.order
}

// Neighbors returns the nodes adjacent to k, or nil if k is unknown.
func (g *Graph) Neighbors(k Key) []Key {
	return g.adj[k]
}

// Has reports whether k is a node of the graph.
func (g *Graph) Has(k Key) bool {
	_, ok := g.adj[k]
	return ok
}

// Owner returns the interior node a border node is attached to.
func (g *Graph) Owner(k Key) (Key, bool) {
	o, ok := g.owner[k]
	return o, ok
}

// Len returns the total number of nodes, border nodes included.
func (g *Graph) Len() int {
	return len(g.order)
}

// Kind returns the lattice kind.
func (g *Graph) Kind() Kind { return g.kind }

// Width returns the lattice width (0 for custom graphs).
func (g *Graph) Width() int { return g.width }

// Height returns the lattice height (0 for custom graphs).
func (g *Graph) Height() int { return g.height }

// InBounds returns true if k lies inside the lattice rectangle.
func (g *Graph) InBounds(k Key) bool {
	return k.X >= 0 && k.X < g.width && k.Y >= 0 && k.Y < g.height
}

// Position maps a node into continuous 2D space.
func (g *Graph) Position(k Key) (float64, float64) {
	return position(g.kind, k)
}

// AttachBorder adds one border node for every lattice position just outside
// the bounds. Each border node is wired to exactly one interior neighbor:
// the first interior node, in enumeration order, that touches it.
// Returns the border nodes added. Custom graphs have no border.
func (g *Graph) AttachBorder() []Key {
	if g.around == nil {
		return nil
	}
	var added []Key
	interior := make([]Key, 0, len(g.order))
	for _, k := range g.order {
		if _, isBorder := g.owner[k]; !isBorder {
			interior = append(interior, k)
		}
	}
	for _, k := range interior {
		for _, n := range g.around(k) {
			if g.InBounds(n) || g.Has(n) {
				continue
			}
			g.AddEdge(k, n)
			g.owner[n] = k
			added = append(added, n)
		}
	}
	return added
}

// String returns a summary of the graph.
func (g *Graph) String() string {
	return fmt.Sprintf("Graph(kind=%s, %dx%d, nodes=%d, border=%d)", g.kind, g.width, g.height, g.Len(), len(g.owner))
}
