// Package llm is the provider-neutral boundary to text-generation services.
package llm

import (
	"context"
	"errors"
)

// Client generates a single completion for a request.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one structured-output generation call.
type Request struct {
	Prompt            string
	SystemInstruction string
	// Schema constrains the reply to JSON of this shape when set.
	Schema      *Schema
	Temperature *float32
}

// SchemaType names a JSON value type.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeInteger SchemaType = "integer"
)

// Schema is a JSON schema subset that every provider can express.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	// Order keeps property order stable for providers that honor it.
	Order    []string
	Items    *Schema
	Required []string
}

// ErrEmptyResponse is returned when a provider replies without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Float32 returns a pointer to v, for Request.Temperature.
func Float32(v float32) *float32 { return &v }
