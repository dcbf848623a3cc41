package graphwriter

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the graph-writer output component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "graph-writer",
		Factory:     NewComponent,
		Schema:      graphWriterSchema,
		Type:        "output",
		Protocol:    "sparql",
		Domain:      "graph",
		Description: "Commits entity triples to the SPARQL store with audit trail and stale-data cleanup",
		Version:     "1.0.0",
	})
}
