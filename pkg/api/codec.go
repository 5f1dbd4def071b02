package api

import (
	"encoding/json"
	"fmt"
)

// CodecName is registered with Connect; it replaces the protobuf JSON codec
// for the application/json content type.
const CodecName = "json"

// Codec marshals the plain message structs of this package.
type Codec struct{}

func (Codec) Name() string {
	return CodecName
}

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		// Connect sends an empty body for empty messages.
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
