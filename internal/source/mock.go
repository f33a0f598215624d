// Package source provides the grid's record sources: a generated mock list
// and an optional Postgres table.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/techbeat/internal/grid"
)

// Mock generates users after a simulated network delay.
type Mock struct {
	Generator grid.Generator
	Count     int
	Delay     time.Duration
	Fail      bool
}

// Load waits out Delay, honoring ctx, then returns Count generated rows.
func (m Mock) Load(ctx context.Context) ([]grid.Row, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Fail {
		return nil, fmt.Errorf("%w: mock source configured to fail", grid.ErrLoadFailed)
	}
	return m.Generator.Generate(m.Count), nil
}
