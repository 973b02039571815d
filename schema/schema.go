package schema

import (
	"github.com/honganh1206/openclawd/api"
	"github.com/invopop/jsonschema" // Generate JSON schema from Go types
)

// Translate Go structs into JSON schema during runtime
// Thus producing a standard format usable outside Go
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var v T

	return reflector.Reflect(v)
}

// Payload pairs a request body with the endpoint that accepts it.
type Payload struct {
	Name   string             `json:"name"`
	Method string             `json:"method"`
	Path   string             `json:"path"`
	Schema *jsonschema.Schema `json:"schema"`
}

// Payloads describes every JSON body the client sends.
func Payloads() []Payload {
	return []Payload{
		{
			Name:   "create-activity",
			Method: "POST",
			Path:   "/api/activities",
			Schema: GenerateSchema[api.CreateActivityRequest](),
		},
		{
			Name:   "update-activity",
			Method: "PATCH",
			Path:   "/api/activities/{id}",
			Schema: GenerateSchema[api.UpdateActivityRequest](),
		},
		{
			Name:   "process-task",
			Method: "POST",
			Path:   "/api/process",
			Schema: GenerateSchema[api.ProcessTaskRequest](),
		},
	}
}
