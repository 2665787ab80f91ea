package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/comparables/internal/transport/wire"
	comparables "github.com/kailas-cloud/comparables/pkg/sdk"
)

func record(l *wire.Listing) (comparables.Record, error) {
	d, err := l.Draft()
	if err != nil {
		return comparables.Record{}, err
	}
	return comparables.Record{
		ID:          d.ID,
		Operation:   d.Operation,
		Kind:        d.Kind,
		Rooms:       d.Rooms,
		Lat:         d.Lat,
		Lng:         d.Lng,
		TotalArea:   d.TotalArea,
		CoveredArea: d.CoveredArea,
		Age:         d.Age,
		Price:       d.Price,
	}, nil
}

func readRecords(path string) ([]comparables.Record, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseRecords(data)
}

// parseRecords accepts a bare array or an object wrapping it under "properties".
// Items use the wire names and lenient numbers of POST /api/properties.
func parseRecords(data []byte) ([]comparables.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Properties json.RawMessage `json:"properties"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		data = wrapped.Properties
	}

	var in []wire.Listing
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	if len(in) == 0 {
		return nil, fmt.Errorf("no listings in input")
	}

	out := make([]comparables.Record, len(in))
	for i := range in {
		rec, err := record(&in[i])
		if err != nil {
			return nil, fmt.Errorf("listing %d: %w", i, err)
		}
		out[i] = rec
	}
	return out, nil
}
