// Terrain generation using layered simplex noise.
// Produces spatially correlated elevation bases for a lattice, and traces
// steepest-descent paths over any elevation surface.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds elevation generation parameters.
type GenConfig struct {
	Seed        int64   // Noise seed (0 = random)
	Mean        float64 // Mean elevation base
	Amplitude   float64 // Max deviation from the mean
	Frequency   float64 // Base noise frequency
	Octaves     int     // Number of noise layers
	Persistence float64 // Amplitude falloff per octave
}

// DefaultGenConfig returns a reasonable starting configuration.
// The mean matches the expected elevation base of a fresh locale.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:        0,
		Mean:        2.5,
		Amplitude:   1.5,
		Frequency:   0.15,
		Octaves:     4,
		Persistence: 0.5,
	}
}

// ElevationField samples one elevation base per graph node.
// Border nodes are skipped; they mirror their interior neighbor instead.
func ElevationField(g *Graph, cfg GenConfig) map[Key]float64 {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	octaves := cfg.Octaves
	if octaves <= 0 {
		octaves = 1
	}

	noise := opensimplex.NewNormalized(seed)
	out := make(map[Key]float64, g.Len())
	for _, k := range g.Nodes() {
		if _, border := g.Owner(k); border {
			continue
		}
		x, y := g.Position(k)
		n := octaveNoise(noise, x, y, octaves, cfg.Frequency, cfg.Persistence)
		// Normalized noise is in [0, 1]; recentre to [-1, 1].
		out[k] = cfg.Mean + cfg.Amplitude*(n*2-1)
	}
	return out
}

// octaveNoise generates fractal noise by layering multiple frequencies.
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

// Descend follows the steepest descent from start until no neighbor is
// strictly lower, returning the visited path (start first, sink last).
// maxSteps bounds the walk; values <= 0 mean the graph size.
func Descend(g Topology, elevation func(Key) float64, start Key, maxSteps int) []Key {
	if !g.Has(start) {
		return nil
	}
	if maxSteps <= 0 {
		maxSteps = len(g.Nodes())
	}

	current := start
	path := []Key{current}
	visited := map[Key]bool{current: true}

	for step := 0; step < maxSteps; step++ {
		// Find lowest neighbor.
		var best *Key
		bestElev := elevation(current)

		for _, nc := range g.Neighbors(current) {
			if visited[nc] {
				continue
			}
			if e := elevation(nc); e < bestElev {
				bestElev = e
				c := nc // capture
				best = &c
			}
		}

		if best == nil {
			break // local minimum: the basin floor
		}
		current = *best
		visited[current] = true
		path = append(path, current)
	}
	return path
}
