package schema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeConfiguration decodes a node's raw string configuration into a typed
// host struct. Decoding is weakly typed: "3" fills an int field, "true" a
// bool, matching how configuration values travel as strings in the document.
//
// Struct fields are matched by `config` tags, falling back to field names.
func DecodeConfiguration(cfg map[string]string, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "config",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	return nil
}
