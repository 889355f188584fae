package collection

import (
	"encoding/json"
	"fmt"

	"github.com/idilsaglam/questlog/internal/model"
)

// Encode serializes items as the JSON array kept under a storage key.
// A nil list encodes as [] rather than null.
func Encode[C model.Category](items []model.Item[C]) ([]byte, error) {
	if items == nil {
		items = []model.Item[C]{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses a stored blob. A JSON null decodes to an empty list.
func Decode[C model.Category](b []byte) ([]model.Item[C], error) {
	var items []model.Item[C]
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Item[C]{}
	}
	return items, nil
}
