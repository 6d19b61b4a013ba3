package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pathq/internal/ir"
)

// marshalRequest converts a request to canonical JSON TEXT for storage.
func marshalRequest(req ir.Request) (string, error) {
	data, err := ir.CanonicalJSON(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	return string(data), nil
}

// unmarshalRequest parses a stored request.
func unmarshalRequest(data string) (ir.Request, error) {
	var req ir.Request
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return ir.Request{}, fmt.Errorf("unmarshal request: %w", err)
	}
	return req, nil
}
