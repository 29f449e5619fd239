package synth

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/goliatone/go-formfill/pkg/model"
)

// placeholderWords seed the generic text fallback.
var placeholderWords = []string{"test", "sample", "demo", "value", "example"}

// Generator draws synthetic values from a random source.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator using rng, or a time-seeded PCG source when rng is
// nil.
func New(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// NewRand returns a PCG-backed random source for the seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Rand exposes the underlying source so callers drawing other random
// decisions share one sequence.
func (g *Generator) Rand() *rand.Rand {
	return g.rng
}

// Synthesize returns a value shaped for the control's kind. The first
// matching rule wins: email, tel, number/range, date, then generic text.
func (g *Generator) Synthesize(control model.Control) string {
	switch control.Kind {
	case model.KindEmail:
		return g.Email()
	case model.KindTel:
		return g.Phone()
	case model.KindNumber, model.KindRange:
		return fmt.Sprintf("%d", g.between(1, 1000))
	case model.KindDate:
		return g.ISODate()
	default:
		return g.Text()
	}
}

// Email returns test<0-9999>@example.com.
func (g *Generator) Email() string {
	return fmt.Sprintf("test%d@example.com", g.rng.IntN(10000))
}

// Phone returns a phone-shaped string with 3-digit area and exchange groups.
func (g *Generator) Phone() string {
	return fmt.Sprintf("+1 (%03d) %03d-%04d", g.between(200, 999), g.between(200, 999), g.rng.IntN(10000))
}

// ISODate returns YYYY-MM-DD with year in [1980,2009] and day in [1,28].
func (g *Generator) ISODate() string {
	return fmt.Sprintf("%04d-%02d-%02d", g.between(1980, 2009), g.between(1, 12), g.between(1, 28))
}

// Text returns a placeholder word followed by a number in [0,999].
func (g *Generator) Text() string {
	return fmt.Sprintf("%s%d", pick(g.rng, placeholderWords), g.rng.IntN(1000))
}

// Bool returns true or false with equal probability.
func (g *Generator) Bool() bool {
	return g.rng.IntN(2) == 1
}

// IntN returns a uniform integer in [0,n).
func (g *Generator) IntN(n int) int {
	return g.rng.IntN(n)
}

// between returns a uniform integer in [lo,hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
