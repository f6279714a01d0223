package models

import (
	"encoding/json"
	"fmt"

	"workmarket/internal/store"
)

// decodeDocument materializes a typed entity from a schemaless document via
// a JSON round trip. Unknown fields are dropped; missing fields take their
// zero values. Typing is imposed here, not by the store.
func decodeDocument[T any](doc store.Document) (*T, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var entity T
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &entity, nil
}

// requireID checks that the designated id field holds a non-empty string.
func requireID(doc store.Document, field string) (string, error) {
	id, ok := doc[field].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("document missing %s", field)
	}
	return id, nil
}
