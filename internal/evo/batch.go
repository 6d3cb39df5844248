package evo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"symgen/internal/model"
)

// BuildFunc returns the operator to apply to the program at index. rng is
// private to that program for the duration of the call.
type BuildFunc func(index int, program *model.Program, rng *rand.Rand) (Operator, error)

type BatchConfig struct {
	Seed    int64
	Workers int
	Logger  *slog.Logger
}

// BatchResult is the outcome for one input program.
type BatchResult struct {
	Program   *model.Program
	Operation string
}

// DeriveSeed returns the seed of the random source used for the program at
// index, so a batch is reproducible regardless of scheduling.
func DeriveSeed(seed int64, index int) int64 {
	return seed + int64(index+1)*1_000_003
}

// ApplyParallel applies one operator call to each program concurrently, with
// at most cfg.Workers calls in flight. Results keep input order. The first
// error cancels the remaining calls.
func ApplyParallel(ctx context.Context, programs []*model.Program, build BuildFunc, cfg BatchConfig) ([]BatchResult, error) {
	if build == nil {
		return nil, errors.New("operator builder is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]BatchResult, len(programs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, program := range programs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(DeriveSeed(cfg.Seed, i)))
			op, err := build(i, program, rng)
			if err != nil {
				return fmt.Errorf("program %d: %w", i, err)
			}
			next, err := op.Apply(gCtx, program)
			if err != nil {
				return fmt.Errorf("program %d: %w", i, err)
			}
			operation := op.Name()
			if d, ok := op.(Describer); ok {
				operation = d.Describe()
			}
			results[i] = BatchResult{Program: next, Operation: operation}
			logger.Debug("operator applied",
				slog.Int("index", i),
				slog.String("program_id", program.ID),
				slog.String("operation", operation),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("batch aborted", slog.String("error", err.Error()))
		return nil, err
	}
	logger.Info("batch applied", slog.Int("programs", len(programs)), slog.Int("workers", workers))
	return results, nil
}

// NamedBuilder resolves the same operator name for every program from a
// registry built per program, so no random source is shared.
func NamedBuilder(name string, opts model.Options, features int) BuildFunc {
	return func(_ int, program *model.Program, rng *rand.Rand) (Operator, error) {
		registry, err := NewBuiltinRegistry(opts, features, rng)
		if err != nil {
			return nil, err
		}
		return registry.Resolve(name, program)
	}
}
