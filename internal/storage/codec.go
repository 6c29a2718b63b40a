package storage

import (
	"encoding/json"
	"errors"

	"memtopo/internal/eval"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

type runRecord struct {
	SchemaVersion int         `json:"schema_version"`
	CodecVersion  int         `json:"codec_version"`
	Report        eval.Report `json:"report"`
}

func EncodeRun(report eval.Report) ([]byte, error) {
	return json.Marshal(runRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
		Report:        report,
	})
}

func DecodeRun(data []byte) (eval.Report, error) {
	var record runRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return eval.Report{}, err
	}
	if record.SchemaVersion != CurrentSchemaVersion || record.CodecVersion != CurrentCodecVersion {
		return eval.Report{}, ErrVersionMismatch
	}
	return record.Report, nil
}
