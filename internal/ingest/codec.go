package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/models"
)

// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll calls.
var (
	payloadEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	payloadDecoder, _ = zstd.NewReader(nil)
)

// cachedLoad is the serialized form of a load kept in the cache.
type cachedLoad struct {
	Columns     []string                 `json:"columns"`
	Rows        []models.Row             `json:"rows"`
	Key         JoinKey                  `json:"key"`
	JoinWarning *apperrors.WarnNoJoinKey `json:"joinWarning,omitempty"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

func encodeLoad(r *Result) ([]byte, error) {
	raw, err := json.Marshal(cachedLoad{
		Columns:     r.Table.Columns,
		Rows:        r.Table.Rows,
		Key:         r.Key,
		JoinWarning: r.JoinWarning,
		Warnings:    r.Warnings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode table: %w", err)
	}
	return payloadEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

// decodeLoad always builds a fresh table, so callers never share rows.
func decodeLoad(payload []byte) (*Result, error) {
	raw, err := payloadDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress cached table: %w", err)
	}
	var c cachedLoad
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cached table: %w", err)
	}
	return &Result{
		Table:       models.NewTable(c.Columns, c.Rows),
		Key:         c.Key,
		JoinWarning: c.JoinWarning,
		Warnings:    c.Warnings,
	}, nil
}
