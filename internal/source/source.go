package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/techbeat/internal/config"
	"github.com/JonMunkholm/techbeat/internal/grid"
)

// FromConfig builds the source named by GRID_SOURCE. The returned close
// function releases any pool it opened and is never nil.
func FromConfig(ctx context.Context, cfg *config.Config) (grid.Source, func(), error) {
	switch cfg.Grid.Source {
	case config.SourceMock, "":
		seed := uint64(cfg.Grid.MockSeed)
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		slog.Info("using mock grid source",
			"rows", cfg.Grid.MockRows,
			"delay", cfg.Grid.MockDelay.String(),
			"seed", seed,
			"fail", cfg.Grid.MockFail,
		)
		return Mock{
			Generator: grid.NewGenerator(seed),
			Count:     cfg.Grid.MockRows,
			Delay:     cfg.Grid.MockDelay,
			Fail:      cfg.Grid.MockFail,
		}, func() {}, nil

	case config.SourcePostgres:
		pool, err := Connect(ctx, cfg.Database)
		if err != nil {
			return nil, func() {}, err
		}
		slog.Info("using postgres grid source", "table", TableName)
		return NewPostgres(pool), pool.Close, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown grid source %q", cfg.Grid.Source)
	}
}
