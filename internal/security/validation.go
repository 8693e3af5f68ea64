package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Argument limits for tool calls.
const (
	DefaultMaxArgsSize  = 8 << 20 // 8 MiB
	DefaultMaxJSONDepth = 16
)

// Validation errors.
var (
	ErrArgsTooLarge = errors.New("arguments exceed maximum size")
	ErrJSONTooDeep  = errors.New("JSON nesting exceeds maximum depth")
	ErrInvalidJSON  = errors.New("invalid JSON")
)

// ValidateArgs checks that data is well-formed JSON no larger than
// DefaultMaxArgsSize and nested no deeper than DefaultMaxJSONDepth.
func ValidateArgs(data []byte) error {
	if len(data) > DefaultMaxArgsSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrArgsTooLarge, len(data), DefaultMaxArgsSize)
	}
	return validateDepth(data, DefaultMaxJSONDepth)
}

func validateDepth(data []byte, limit int) error {
	if len(data) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}
		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
			if depth > limit {
				return fmt.Errorf("%w: depth %d (max %d)", ErrJSONTooDeep, depth, limit)
			}
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
}
