package graphwriter

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semstreams/component"
)

// graphWriterSchema defines the configuration schema.
var graphWriterSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the graph-writer output component.
type Config struct {
	Ports *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`

	// StoreEndpoint is the base URL of the SPARQL store, without a
	// trailing dataset path (e.g. http://localhost:3030).
	StoreEndpoint string `json:"store_endpoint" schema:"type:string,description:Base URL of the SPARQL store,category:basic,default:http://localhost:3030"`

	Tenant    string `json:"tenant" schema:"type:string,description:Tenant identifier for the commit scope,category:basic"`
	Workspace string `json:"workspace" schema:"type:string,description:Workspace identifier for the commit scope,category:basic"`

	QueryBatchSize  int `json:"query_batch_size" schema:"type:int,description:Entities per existing-facts query,category:advanced,default:100"`
	DeleteBatchSize int `json:"delete_batch_size" schema:"type:int,description:Entities per stale-delete update,category:advanced,default:100"`
	InsertBatchSize int `json:"insert_batch_size" schema:"type:int,description:Triples per insert request,category:advanced,default:10000"`

	// LockTTL bounds how long a commit advisory lock survives a crashed
	// writer before other holders may acquire it.
	LockTTL time.Duration `json:"lock_ttl" schema:"type:duration,description:Advisory lock TTL,category:advanced,default:5m"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.StoreEndpoint == "" {
		return fmt.Errorf("store_endpoint is required")
	}
	if c.Tenant == "" {
		return fmt.Errorf("tenant is required")
	}
	if c.Workspace == "" {
		return fmt.Errorf("workspace is required")
	}
	if c.QueryBatchSize < 0 || c.DeleteBatchSize < 0 || c.InsertBatchSize < 0 {
		return fmt.Errorf("batch sizes must be non-negative")
	}
	if c.LockTTL < 0 {
		return fmt.Errorf("lock_ttl must be non-negative")
	}
	return nil
}

// DefaultConfig returns the default configuration for graph-writer.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "entities_in",
					Type:        "jetstream",
					Subject:     "graph.ingest.entity",
					StreamName:  "GRAPH",
					Required:    true,
					Description: "Entity ingest messages from upstream producers",
				},
			},
			Outputs: []component.PortDefinition{},
		},
		StoreEndpoint:   "http://localhost:3030",
		QueryBatchSize:  100,
		DeleteBatchSize: 100,
		InsertBatchSize: 10000,
		LockTTL:         5 * time.Minute,
	}
}
