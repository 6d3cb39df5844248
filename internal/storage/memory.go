package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"symgen/internal/model"
)

// MemoryStore keeps encoded payloads so callers never share program memory
// with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	programs    map[string][]byte
	lineage     map[string]model.LineageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.programs = make(map[string][]byte)
	s.lineage = make(map[string]model.LineageRecord)
	return nil
}

func (s *MemoryStore) SaveProgram(_ context.Context, program *model.Program) error {
	if program == nil {
		return errors.New("program is required")
	}
	if err := requireID(program.ID); err != nil {
		return err
	}
	payload, err := EncodeProgram(program)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.programs[program.ID] = payload
	return nil
}

func (s *MemoryStore) GetProgram(_ context.Context, id string) (*model.Program, bool, error) {
	s.mu.RLock()
	payload, ok := s.programs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	program, err := DecodeProgram(payload)
	if err != nil {
		return nil, false, err
	}
	return program, true, nil
}

func (s *MemoryStore) ListPrograms(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.programs))
	for id := range s.programs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) DeleteProgram(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.programs, id)
	delete(s.lineage, id)
	return nil
}

func (s *MemoryStore) SaveLineage(_ context.Context, record model.LineageRecord) error {
	if err := requireID(record.ProgramID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errors.New("store is not initialized")
	}
	record.ParentIDs = append([]string(nil), record.ParentIDs...)
	s.lineage[record.ProgramID] = record
	return nil
}

func (s *MemoryStore) GetLineage(_ context.Context, programID string) (model.LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.lineage[programID]
	if !ok {
		return model.LineageRecord{}, false, nil
	}
	record.ParentIDs = append([]string(nil), record.ParentIDs...)
	return record, true, nil
}
