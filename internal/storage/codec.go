package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"symgen/internal/genotype"
	"symgen/internal/model"
)

const (
	CurrentSchemaVersion = model.SchemaVersion
	CurrentCodecVersion  = model.CodecVersion
)

var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeProgram serializes the reachable part of p; garbage slots are never
// written.
func EncodeProgram(p *model.Program) ([]byte, error) {
	if p == nil {
		return nil, errors.New("program is required")
	}
	return json.Marshal(genotype.Clone(p))
}

func DecodeProgram(data []byte) (*model.Program, error) {
	var program model.Program
	if err := json.Unmarshal(data, &program); err != nil {
		return nil, err
	}
	if err := checkVersion(program.VersionedRecord); err != nil {
		return nil, err
	}
	switch program.Kind {
	case model.KindTree, model.KindGraph:
	default:
		return nil, fmt.Errorf("%w: unsupported kind %q", genotype.ErrInvalidProgram, program.Kind)
	}
	if err := genotype.ValidateShape(&program); err != nil {
		return nil, err
	}
	return &program, nil
}

func EncodeLineageRecord(record model.LineageRecord) ([]byte, error) {
	return json.Marshal(record)
}

func DecodeLineageRecord(data []byte) (model.LineageRecord, error) {
	var record model.LineageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.LineageRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.LineageRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
