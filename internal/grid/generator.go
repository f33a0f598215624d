package grid

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Source produces the initial rows of a view. It is called once per view.
type Source interface {
	Load(ctx context.Context) ([]Row, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Row, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) ([]Row, error) {
	return f(ctx)
}

// maxActiveAge bounds how far back a generated lastActive may be.
const maxActiveAge = 10_000_000_000 * time.Millisecond

// Generator builds mock user rows from a seed so results are reproducible.
type Generator struct {
	Seed uint64
	Now  func() time.Time
}

// NewGenerator returns a generator with the given seed using the wall clock.
func NewGenerator(seed uint64) Generator {
	return Generator{Seed: seed, Now: time.Now}
}

// Generate returns n rows with ids 1..n. Role, status and lastActive are
// drawn from the seeded stream; name and email derive from the id.
func (g Generator) Generate(n int) []Row {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	rng := rand.New(rand.NewPCG(g.Seed, g.Seed^0x9e3779b97f4a7c15))
	ref := now()

	rows := make([]Row, n)
	for i := range rows {
		id := i + 1
		rows[i] = Row{
			ID:         id,
			Name:       fmt.Sprintf("User %d", id),
			Email:      fmt.Sprintf("user%d@example.com", id),
			Role:       Roles[rng.IntN(len(Roles))],
			Status:     Statuses[rng.IntN(len(Statuses))],
			LastActive: ref.Add(-time.Duration(rng.Int64N(int64(maxActiveAge)))).Truncate(time.Millisecond),
		}
	}
	return rows
}
