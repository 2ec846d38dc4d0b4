package calculatorv1

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts a typed message to its Struct wire form.
func ToStruct(message any) (*structpb.Struct, error) {
	raw, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	value, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return value, nil
}

// FromStruct decodes a Struct into a typed message. A nil Struct leaves
// target at its zero value.
func FromStruct(value *structpb.Struct, target any) error {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value.AsMap())
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
