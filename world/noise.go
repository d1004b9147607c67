package world

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// driftField generates coherent per-emitter wander vectors from Perlin
// noise, so emitters roam smoothly instead of jittering.
type driftField struct {
	perm [512]int
}

// newDriftField creates a drift field seeded deterministically.
func newDriftField(seed int64) *driftField {
	f := &driftField{}
	rng := rand.New(rand.NewSource(seed))

	// Initialize permutation table
	var perm [256]int
	for i := range perm {
		perm[i] = i
	}

	// Shuffle
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	// Duplicate
	for i := 0; i < 256; i++ {
		f.perm[i] = perm[i]
		f.perm[i+256] = perm[i]
	}

	return f
}

// Drift returns a wander direction for one emitter at time t. Each emitter
// samples a distinct slab of the noise volume; components are in [-1, 1].
func (f *driftField) Drift(emitter uint32, t float64) r3.Vec {
	slab := float64(emitter) * 37.41
	return r3.Vec{
		X: f.noise3D(t, slab, 0),
		Y: f.noise3D(t, slab, 11.7),
		Z: f.noise3D(t, slab, 23.9),
	}
}

// noise3D returns a noise value for 3D coordinates.
func (f *driftField) noise3D(x, y, z float64) float64 {
	// Find unit cube
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255
	Z := int(math.Floor(z)) & 255

	// Find relative position in cube
	x -= math.Floor(x)
	y -= math.Floor(y)
	z -= math.Floor(z)

	// Compute fade curves
	u := fade(x)
	v := fade(y)
	w := fade(z)

	// Hash coordinates of cube corners
	A := f.perm[X] + Y
	AA := f.perm[A] + Z
	AB := f.perm[A+1] + Z
	B := f.perm[X+1] + Y
	BA := f.perm[B] + Z
	BB := f.perm[B+1] + Z

	// Blend results from 8 corners
	return lerp(w, lerp(v, lerp(u, grad3D(f.perm[AA], x, y, z),
		grad3D(f.perm[BA], x-1, y, z)),
		lerp(u, grad3D(f.perm[AB], x, y-1, z),
			grad3D(f.perm[BB], x-1, y-1, z))),
		lerp(v, lerp(u, grad3D(f.perm[AA+1], x, y, z-1),
			grad3D(f.perm[BA+1], x-1, y, z-1)),
			lerp(u, grad3D(f.perm[AB+1], x, y-1, z-1),
				grad3D(f.perm[BB+1], x-1, y-1, z-1))))
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad3D(hash int, x, y, z float64) float64 {
	h := hash & 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
