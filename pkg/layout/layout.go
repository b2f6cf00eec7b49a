// Package layout holds the pure position strategies the transition
// controller chooses from: the flattened desktop orbit, the vertical queues
// of the staged intro, stacked lists and the circular formation.
//
// Nothing here keeps state; randomness is taken from the caller's source.
package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/random"
)

// Orbit describes the tilted ellipse desktop bodies travel on
type Orbit struct {
	FlattenY float64
	FlattenZ float64
}

// DefaultOrbit flattens the circle to half height and pushes it half into depth
var DefaultOrbit = Orbit{FlattenY: 0.5, FlattenZ: 0.5}

// Position returns the 3D point for angle on an orbit of the given radius
func (o Orbit) Position(angle, radius float64) r3.Vec {
	s, c := math.Sincos(angle)
	return r3.Vec{
		X: c * radius,
		Y: s * radius * o.FlattenY,
		Z: s * radius * o.FlattenZ,
	}
}

// Stack returns the slot position of index in a vertical list of count
// items centred on y=0 at column x. Index 0 is the top.
func Stack(index, count int, x, spacing float64) r3.Vec {
	top := float64(count-1) / 2 * spacing
	return r3.Vec{X: x, Y: top - float64(index)*spacing}
}

// Ring returns the slot position on a circle in the screen plane. Slots are
// evenly spaced; rotation turns the whole formation.
func Ring(slot, count int, radius, rotation float64) r3.Vec {
	if count <= 0 {
		return r3.Vec{}
	}
	a := rotation + float64(slot)*2*math.Pi/float64(count)
	s, c := math.Sincos(a)
	return r3.Vec{X: c * radius, Y: s * radius}
}

// Bob is the gentle vertical drift applied to idle circular formations
func Bob(seconds float64, index int, amplitude, frequency float64) float64 {
	if amplitude == 0 {
		return 0
	}
	return amplitude * math.Sin(seconds*frequency+float64(index))
}

// Lerp interpolates two points
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Queues is the side assignment of the staged intro. Left and Right hold
// body indices top to bottom; together they cover every body exactly once.
type Queues struct {
	Left  []int
	Right []int
}

// SplitCandidates are the left-queue sizes the split draws from
var SplitCandidates = []int{3, 4}

// Split randomly assigns n bodies to the two queues. The left side receives
// one of SplitCandidates (clamped so both sides are non-empty when n > 1) and
// a random permutation decides which bodies go where.
func Split(n int, rng random.Source) Queues {
	if n <= 0 {
		return Queues{}
	}
	perm := rng.Perm(n)
	if n == 1 {
		return Queues{Left: perm}
	}

	k := SplitCandidates[rng.Intn(len(SplitCandidates))]
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		k = 1
	}

	return Queues{
		Left:  append([]int(nil), perm[:k]...),
		Right: append([]int(nil), perm[k:]...),
	}
}

// Slots returns the queue position of every body, indexed by body index.
// Queues sit at ±offsetX.
func (q Queues) Slots(n int, offsetX, spacing float64) []r3.Vec {
	out := make([]r3.Vec, n)
	for i, idx := range q.Left {
		out[idx] = Stack(i, len(q.Left), -offsetX, spacing)
	}
	for i, idx := range q.Right {
		out[idx] = Stack(i, len(q.Right), offsetX, spacing)
	}
	return out
}

// Order returns the ring slot of every body, indexed by body index: the left
// queue fills the first slots, then the right queue.
func (q Queues) Order(n int) []int {
	out := make([]int, n)
	slot := 0
	for _, idx := range q.Left {
		out[idx] = slot
		slot++
	}
	for _, idx := range q.Right {
		out[idx] = slot
		slot++
	}
	return out
}

// Side reports which queue holds body index: -1 left, +1 right, 0 neither
func (q Queues) Side(index int) int {
	for _, idx := range q.Left {
		if idx == index {
			return -1
		}
	}
	for _, idx := range q.Right {
		if idx == index {
			return 1
		}
	}
	return 0
}
