// Package graphwriter provides an output component that consumes entity
// ingest messages and commits their triples to the SPARQL store through the
// audited commit pipeline.
package graphwriter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	ssgraph "github.com/c360studio/semstreams/graph"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semgraph/commit"
	"github.com/c360studio/semgraph/graph"
	"github.com/c360studio/semgraph/lock"
	"github.com/c360studio/semgraph/store"
)

// Component implements the graph-writer output processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	committer *commit.Committer
	scope     commit.Scope
	locks     *lock.Manager
	metrics   *writerMetrics

	// Resolved subjects from port config
	inputSubject string
	inputStream  string

	// Lifecycle
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics
	messagesProcessed atomic.Int64
	commitErrors      atomic.Int64
	lockContention    atomic.Int64
	lastActivityMu    sync.RWMutex
	lastActivity      time.Time
}

// NewComponent creates a new graph-writer output component.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	var config Config
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if config.Ports == nil {
		config = DefaultConfig()
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, fmt.Errorf("unmarshal config with defaults: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := deps.GetLoggerWithComponent("graph-writer")

	metrics := newWriterMetrics()
	if err := metrics.register(deps.MetricsRegistry); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	storeClient := store.NewHTTPClient(config.StoreEndpoint, store.WithLogger(logger))
	committer := commit.NewCommitter(storeClient,
		commit.WithLogger(logger),
		commit.WithBatchSizes(config.QueryBatchSize, config.DeleteBatchSize, config.InsertBatchSize))

	// Resolve subjects from port definitions
	inputSubject := "graph.ingest.entity"
	inputStream := "GRAPH"
	if config.Ports != nil && len(config.Ports.Inputs) > 0 {
		inputSubject = config.Ports.Inputs[0].Subject
		inputStream = config.Ports.Inputs[0].StreamName
	}

	return &Component{
		name:         "graph-writer",
		config:       config,
		natsClient:   deps.NATSClient,
		logger:       logger,
		committer:    committer,
		scope:        commit.Scope{Tenant: config.Tenant, Workspace: config.Workspace},
		metrics:      metrics,
		inputSubject: inputSubject,
		inputStream:  inputStream,
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins consuming entity ingest messages and committing them.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}

	c.running = true
	c.startTime = time.Now()

	consumeCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	// Advisory locks serialize overlapping commits for the same document.
	// A KV failure degrades to unlocked commits rather than blocking start.
	if js, err := c.natsClient.JetStream(); err == nil {
		manager, lockErr := lock.NewManager(consumeCtx, js, c.config.LockTTL)
		if lockErr != nil {
			c.logger.Warn("commit locking unavailable", "error", lockErr)
		} else {
			c.locks = manager
		}
	}

	consumerCfg := natsclient.StreamConsumerConfig{
		StreamName:    c.inputStream,
		ConsumerName:  "graph-writer",
		FilterSubject: c.inputSubject,
		DeliverPolicy: "new",
		AckPolicy:     "explicit",
		MaxDeliver:    3,
		AckWait:       30 * time.Second,
	}

	err := c.natsClient.ConsumeStreamWithConfig(consumeCtx, consumerCfg, c.handleMessage)
	if err != nil {
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("start consumer: %w", err)
	}

	c.logger.Info("graph-writer started",
		"store", c.config.StoreEndpoint,
		"scope", c.scope.Ref(),
		"input", c.inputSubject,
		"locking", c.locks != nil)

	return nil
}

// handleMessage commits a single entity ingest message.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	var baseMsg message.BaseMessage
	if err := json.Unmarshal(msg.Data(), &baseMsg); err != nil {
		c.logger.Warn("Failed to unmarshal base message",
			"error", err,
			"subject", msg.Subject())
		_ = msg.Nak()
		return
	}

	entityID, triples, sourceDoc, ok := c.extractEntity(&baseMsg, msg.Subject())
	if !ok {
		_ = msg.Nak()
		return
	}

	if c.locks != nil && sourceDoc != "" {
		held, err := c.locks.Acquire(ctx, c.scope.Ref(), sourceDoc, c.name)
		if err != nil {
			if errors.Is(err, lock.ErrHeld) {
				// Another writer is committing this document; redeliver.
				c.lockContention.Add(1)
				_ = msg.NakWithDelay(time.Second)
				return
			}
			c.logger.Warn("Lock acquisition failed, committing unlocked",
				"entity_id", entityID,
				"error", err)
		} else {
			defer func() {
				if err := held.Release(ctx); err != nil {
					c.logger.Warn("Lock release failed", "error", err)
				}
			}()
		}
	}

	start := time.Now()
	result, err := c.committer.Commit(ctx, commit.Request{
		Scope:             c.scope,
		Triples:           graph.CodecTriples(entityID, triples),
		SourceDocumentURI: sourceDoc,
	})
	c.metrics.CommitDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, commit.ErrEmptyCommit) {
			// Nothing to write; the message is consumed either way.
			_ = msg.Ack()
			return
		}
		c.logger.Warn("Commit failed",
			"entity_id", entityID,
			"scope", c.scope.Ref(),
			"source_document", sourceDoc,
			"error", err)
		c.commitErrors.Add(1)
		c.metrics.CommitsTotal.WithLabelValues("error").Inc()
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()
	c.messagesProcessed.Add(1)
	c.metrics.CommitsTotal.WithLabelValues("ok").Inc()
	c.metrics.TriplesWritten.Add(float64(result.TripleCount))
	c.metrics.AuditEventsTotal.Add(float64(result.AuditEventCount))
	c.updateLastActivity()

	c.logger.Debug("Committed entity",
		"entity_id", entityID,
		"scope", result.ScopeRef,
		"triples", result.TripleCount)
}

// extractEntity pulls the entity identifier, triples, and source document
// from a decoded message. Payloads registered by this module carry the
// source document; any other Graphable payload commits on the bulk path.
func (c *Component) extractEntity(baseMsg *message.BaseMessage, subject string) (string, []message.Triple, string, bool) {
	switch payload := baseMsg.Payload().(type) {
	case *graph.EntityPayload:
		return payload.EntityID(), payload.Triples(), payload.SourceDocument, true
	case ssgraph.Graphable:
		return payload.EntityID(), payload.Triples(), "", true
	default:
		c.logger.Warn("Payload does not implement Graphable",
			"type", baseMsg.Type(),
			"subject", subject)
		return "", nil, "", false
	}
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	c.running = false
	c.logger.Info("graph-writer stopped",
		"messages_processed", c.messagesProcessed.Load(),
		"commit_errors", c.commitErrors.Load(),
		"lock_contention", c.lockContention.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "graph-writer",
		Type:        "output",
		Description: "Commits entity triples to the SPARQL store with audit trail and stale-data cleanup",
		Version:     "1.0.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = buildPort(portDef, component.DirectionInput)
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = buildPort(portDef, component.DirectionOutput)
	}
	return ports
}

// buildPort creates a component.Port from a PortDefinition, using JetStreamPort
// for jetstream-type ports and NATSPort for core NATS ports.
func buildPort(portDef component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        portDef.Name,
		Direction:   direction,
		Required:    portDef.Required,
		Description: portDef.Description,
	}
	if portDef.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: portDef.StreamName,
			Subjects:   []string{portDef.Subject},
		}
	} else {
		port.Config = component.NATSPort{
			Subject: portDef.Subject,
		}
	}
	return port
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return graphWriterSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.commitErrors.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		MessagesPerSecond: 0,
		BytesPerSecond:    0,
		ErrorRate:         0,
		LastActivity:      c.getLastActivity(),
	}
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
