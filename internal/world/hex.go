// Package world provides the lattice topologies a region is built on.
// Every lattice is stored as an ordered undirected graph keyed by offset
// coordinates (x = column, y = row), so cell accessors look the same for
// grid, hex and triangular layouts.
package world

import "math"

// Key identifies a node in a graph. Lattice nodes use offset coordinates;
// border nodes sit just outside the lattice bounds.
type Key struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// hexAxial is a hex position in axial coordinates (q, r).
// The third cube coordinate s is derived: s = -q - r.
type hexAxial struct {
	Q int
	R int
}

// S returns the implicit third cube coordinate.
func (h hexAxial) S() int {
	return -h.Q - h.R
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]hexAxial{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// gridDirections are the 4-connected offsets of the rectangular grid.
var gridDirections = [4]Key{
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: 0, Y: 1},
}

// offsetToAxial converts odd-r offset coordinates to axial.
func offsetToAxial(k Key) hexAxial {
	return hexAxial{Q: k.X - (k.Y-(k.Y&1))/2, R: k.Y}
}

// axialToOffset converts axial coordinates back to odd-r offset.
func axialToOffset(h hexAxial) Key {
	return Key{X: h.Q + (h.R-(h.R&1))/2, Y: h.R}
}

// gridAround returns the 4-connected lattice positions around k.
func gridAround(k Key) []Key {
	out := make([]Key, 0, len(gridDirections))
	for _, d := range gridDirections {
		out = append(out, Key{X: k.X + d.X, Y: k.Y + d.Y})
	}
	return out
}

// hexAround returns the six hex cells sharing an edge with k.
func hexAround(k Key) []Key {
	a := offsetToAxial(k)
	out := make([]Key, 0, len(HexNeighborDirections))
	for _, d := range HexNeighborDirections {
		out = append(out, axialToOffset(hexAxial{Q: a.Q + d.Q, R: a.R + d.R}))
	}
	return out
}

// triUp reports whether the triangle at k points up. Up and down
// triangles alternate along both axes.
func triUp(k Key) bool {
	return (k.X+k.Y)&1 == 0
}

// triAround returns the three triangles sharing an edge with k: left,
// right, and the one across the horizontal edge (below an up triangle,
// above a down triangle).
func triAround(k Key) []Key {
	vertical := Key{X: k.X, Y: k.Y + 1}
	if !triUp(k) {
		vertical = Key{X: k.X, Y: k.Y - 1}
	}
	return []Key{
		{X: k.X - 1, Y: k.Y},
		{X: k.X + 1, Y: k.Y},
		vertical,
	}
}

// HexDistance returns the hex distance between two offset coordinates.
func HexDistance(a, b Key) int {
	ha, hb := offsetToAxial(a), offsetToAxial(b)
	dq := abs(ha.Q - hb.Q)
	dr := abs(ha.R - hb.R)
	ds := abs(ha.S() - hb.S())
	// Max of the three absolute differences in cube coordinates.
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

// position maps a lattice key into continuous space for noise sampling.
func position(kind Kind, k Key) (float64, float64) {
	switch kind {
	case KindHex:
		// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
		a := offsetToAxial(k)
		return float64(a.Q) + float64(a.R)*0.5, float64(a.R) * math.Sqrt(3.0) / 2.0
	case KindTriangular:
		return float64(k.X) * 0.5, float64(k.Y) * math.Sqrt(3.0) / 2.0
	default:
		return float64(k.X), float64(k.Y)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
