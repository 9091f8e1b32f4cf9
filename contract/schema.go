package contract

import (
	"bytes"

	"github.com/casualjim/rook/pkg/stdx"
	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Contracts document payloads that are allowed to grow fields, so additional
// properties stay legal. DoNotReference keeps every schema self-contained,
// which makes them comparable and renderable without a resolver.
var schemaReflector = jsonschema.Reflector{
	AllowAdditionalProperties: true,
	DoNotReference:            true,
}

func schemaFor[T any]() *jsonschema.Schema {
	schema := schemaReflector.Reflect(stdx.Zero[T]())
	schema.Version = ""
	return schema
}

// schemasAgree compares two schemas structurally by their canonical JSON
// form. A nil schema agrees with anything: no declaration, no disagreement.
func schemasAgree(a, b *jsonschema.Schema) bool {
	if a == nil || b == nil {
		return true
	}
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
