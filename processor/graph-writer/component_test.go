// Package graphwriter tests cover the component factory, configuration
// validation, lifecycle, and payload extraction. Tests requiring NATS or a
// live SPARQL store are integration tests and not included here.
package graphwriter

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/payloadregistry"

	"github.com/c360studio/semgraph/graph"
)

func TestNewComponent_Unit(t *testing.T) {
	tests := []struct {
		name      string
		rawConfig json.RawMessage
		wantErr   bool
	}{
		{
			name:      "invalid JSON",
			rawConfig: json.RawMessage(`{invalid json}`),
			wantErr:   true,
		},
		{
			name:      "missing tenant",
			rawConfig: json.RawMessage(`{"workspace":"main"}`),
			wantErr:   true,
		},
		{
			name:      "missing workspace",
			rawConfig: json.RawMessage(`{"tenant":"acme"}`),
			wantErr:   true,
		},
		{
			name:      "valid config",
			rawConfig: json.RawMessage(`{"tenant":"acme","workspace":"main"}`),
			wantErr:   false,
		},
		{
			name:      "negative batch size",
			rawConfig: json.RawMessage(`{"tenant":"acme","workspace":"main","insert_batch_size":-1}`),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := component.Dependencies{
				Logger: slog.Default(),
			}

			_, err := NewComponent(tt.rawConfig, deps)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewComponent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestComponent_StartWithoutNATSClient(t *testing.T) {
	c := &Component{
		name:   "graph-writer",
		logger: slog.Default(),
		config: DefaultConfig(),
	}

	if err := c.Start(context.Background()); err == nil {
		t.Error("Start() should return error when NATS client is nil")
	}

	c.mu.RLock()
	running := c.running
	c.mu.RUnlock()
	if running {
		t.Error("Component should not be running after failed start")
	}
}

func TestComponent_StopWhenStopped(t *testing.T) {
	c := &Component{
		name:   "graph-writer",
		logger: slog.Default(),
	}

	if err := c.Initialize(); err != nil {
		t.Errorf("Initialize() error = %v, want nil", err)
	}
	if err := c.Stop(time.Second); err != nil {
		t.Error("Stop() should not error when already stopped")
	}
}

func TestComponent_ExtractEntity(t *testing.T) {
	c := &Component{
		name:   "graph-writer",
		logger: slog.Default(),
	}

	payload := &graph.EntityPayload{
		EntityID_: "https://semgraph.dev/entity/acme/main/organization/abc",
		TripleData: []message.Triple{
			{Predicate: "https://semgraph.dev/ontology/name", Object: "Acme"},
		},
		SourceDocument: "https://semgraph.dev/document/orgs.csv",
		UpdatedAt:      time.Now(),
	}

	baseMsg := message.NewBaseMessage(graph.EntityType, payload, "test")

	entityID, triples, sourceDoc, ok := c.extractEntity(baseMsg, "graph.ingest.entity")
	if !ok {
		t.Fatal("extractEntity() should succeed for an EntityPayload")
	}
	if entityID != payload.EntityID_ {
		t.Errorf("entityID = %q, want %q", entityID, payload.EntityID_)
	}
	if len(triples) != 1 {
		t.Errorf("triples count = %d, want 1", len(triples))
	}
	if sourceDoc != payload.SourceDocument {
		t.Errorf("sourceDoc = %q, want %q", sourceDoc, payload.SourceDocument)
	}
}

func TestComponent_ExtractEntity_RoundTrip(t *testing.T) {
	c := &Component{
		name:   "graph-writer",
		logger: slog.Default(),
	}

	payload := &graph.EntityPayload{
		EntityID_: "https://semgraph.dev/entity/acme/main/person/xyz",
		TripleData: []message.Triple{
			{Predicate: "https://semgraph.dev/ontology/name", Object: "Ada"},
		},
		SourceDocument: "https://semgraph.dev/document/people.csv",
	}

	data, err := json.Marshal(message.NewBaseMessage(graph.EntityType, payload, "test"))
	if err != nil {
		t.Fatalf("marshal base message: %v", err)
	}

	reg := payloadregistry.New()
	if err := graph.RegisterPayloads(reg); err != nil {
		t.Fatalf("register payloads: %v", err)
	}
	decoded, err := message.NewDecoder(reg).Decode(data)
	if err != nil {
		t.Fatalf("unmarshal base message: %v", err)
	}

	// The registered payload factory must reconstruct the concrete type so
	// the source document survives the wire.
	_, _, sourceDoc, ok := c.extractEntity(decoded, "graph.ingest.entity")
	if !ok {
		t.Fatal("extractEntity() should succeed after a wire round-trip")
	}
	if sourceDoc != payload.SourceDocument {
		t.Errorf("sourceDoc = %q, want %q", sourceDoc, payload.SourceDocument)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid",
			config: Config{
				StoreEndpoint: "http://localhost:3030",
				Tenant:        "acme",
				Workspace:     "main",
			},
			wantErr: false,
		},
		{
			name: "missing endpoint",
			config: Config{
				Tenant:    "acme",
				Workspace: "main",
			},
			wantErr: true,
		},
		{
			name: "negative lock ttl",
			config: Config{
				StoreEndpoint: "http://localhost:3030",
				Tenant:        "acme",
				Workspace:     "main",
				LockTTL:       -time.Minute,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Ports == nil {
		t.Fatal("DefaultConfig().Ports should not be nil")
	}
	if len(config.Ports.Inputs) != 1 {
		t.Errorf("input port count = %d, want 1", len(config.Ports.Inputs))
	}
	if config.Ports.Inputs[0].Subject != "graph.ingest.entity" {
		t.Errorf("input subject = %q, want graph.ingest.entity", config.Ports.Inputs[0].Subject)
	}
	if config.QueryBatchSize != 100 || config.DeleteBatchSize != 100 {
		t.Error("query and delete batch sizes should default to 100")
	}
	if config.InsertBatchSize != 10000 {
		t.Errorf("insert batch size = %d, want 10000", config.InsertBatchSize)
	}
	if config.LockTTL != 5*time.Minute {
		t.Errorf("lock TTL = %v, want 5m", config.LockTTL)
	}
}

func TestComponent_Meta(t *testing.T) {
	c := &Component{name: "graph-writer"}

	meta := c.Meta()
	if meta.Name != "graph-writer" {
		t.Errorf("Meta.Name = %q, want graph-writer", meta.Name)
	}
	if meta.Type != "output" {
		t.Errorf("Meta.Type = %q, want output", meta.Type)
	}
	if meta.Description == "" {
		t.Error("Meta.Description should not be empty")
	}
}

func TestComponent_Health(t *testing.T) {
	c := &Component{
		name:   "graph-writer",
		logger: slog.Default(),
	}

	health := c.Health()
	if health.Healthy {
		t.Error("Health.Healthy should be false when stopped")
	}
	if health.Status != "stopped" {
		t.Errorf("Health.Status = %q, want stopped", health.Status)
	}

	c.mu.Lock()
	c.running = true
	c.startTime = time.Now()
	c.mu.Unlock()

	health = c.Health()
	if !health.Healthy {
		t.Error("Health.Healthy should be true when running")
	}
	if health.Status != "running" {
		t.Errorf("Health.Status = %q, want running", health.Status)
	}
}

func TestComponent_Ports(t *testing.T) {
	c := &Component{config: DefaultConfig()}

	inputs := c.InputPorts()
	if len(inputs) != 1 {
		t.Fatalf("InputPorts count = %d, want 1", len(inputs))
	}
	if inputs[0].Name != "entities_in" {
		t.Errorf("InputPorts[0].Name = %q, want entities_in", inputs[0].Name)
	}
	if len(c.OutputPorts()) != 0 {
		t.Errorf("OutputPorts count = %d, want 0", len(c.OutputPorts()))
	}
}
