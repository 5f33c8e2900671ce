package store

import (
	"encoding/json"
	"fmt"
)

func marshalDoc(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	return data, nil
}

// Unmarshal decodes raw document bytes, as handed to List callbacks, into v.
func Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshaling document: %w", err)
	}
	return nil
}
