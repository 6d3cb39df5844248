package storage

import (
	"context"
	"errors"
	"fmt"

	"symgen/internal/model"
)

// Store defines persistence operations for programs and their lineage.
type Store interface {
	Init(ctx context.Context) error
	SaveProgram(ctx context.Context, program *model.Program) error
	GetProgram(ctx context.Context, id string) (*model.Program, bool, error)
	ListPrograms(ctx context.Context) ([]string, error)
	DeleteProgram(ctx context.Context, id string) error
	SaveLineage(ctx context.Context, record model.LineageRecord) error
	GetLineage(ctx context.Context, programID string) (model.LineageRecord, bool, error)
}

// Ancestry follows first parents from programID back to a program without
// recorded lineage, returning at most limit records, newest first. limit <= 0
// means no limit.
func Ancestry(ctx context.Context, store Store, programID string, limit int) ([]model.LineageRecord, error) {
	var chain []model.LineageRecord
	seen := make(map[string]bool)
	current := programID
	for current != "" && (limit <= 0 || len(chain) < limit) {
		if seen[current] {
			return nil, fmt.Errorf("lineage loop at %s", current)
		}
		seen[current] = true
		record, ok, err := store.GetLineage(ctx, current)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		chain = append(chain, record)
		current = ""
		if len(record.ParentIDs) > 0 {
			current = record.ParentIDs[0]
		}
	}
	return chain, nil
}

func requireID(id string) error {
	if id == "" {
		return errors.New("program id is required")
	}
	return nil
}
