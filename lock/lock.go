// Package lock provides the per-(scope, source document) advisory lock that
// serializes overlapping commits. The commit pipeline itself performs no
// mutual exclusion; callers acquire a lock around each commit so two
// ingestions of the same document cannot interleave their audit, delete,
// and insert phases.
//
// Locks live in a NATS JetStream KV bucket with a TTL, so a crashed holder
// never wedges a document forever.
package lock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Bucket is the KV bucket holding commit locks.
const Bucket = "SEMGRAPH_COMMIT_LOCKS"

// DefaultTTL bounds how long an abandoned lock survives.
const DefaultTTL = 5 * time.Minute

// ErrHeld is returned when the lock is already held by another committer.
var ErrHeld = errors.New("commit lock already held")

// Manager acquires and releases commit locks.
type Manager struct {
	bucket jetstream.KeyValue
}

// holder is the JSON value stored under a held lock key.
type holder struct {
	Owner      string    `json:"owner"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// NewManager creates the lock bucket if needed and returns a Manager.
func NewManager(ctx context.Context, js jetstream.JetStream, ttl time.Duration) (*Manager, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	bucket, err := js.KeyValue(ctx, Bucket)
	if err != nil {
		bucket, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      Bucket,
			Description: "Semgraph per-document commit locks",
			TTL:         ttl,
		})
		if err != nil {
			return nil, fmt.Errorf("create lock bucket: %w", err)
		}
	}
	return &Manager{bucket: bucket}, nil
}

// Acquire takes the lock for (scopeRef, sourceDocumentURI) on behalf of
// owner. Returns ErrHeld without blocking when another holder has it.
func (m *Manager) Acquire(ctx context.Context, scopeRef, sourceDocumentURI, owner string) (*Lock, error) {
	key := Key(scopeRef, sourceDocumentURI)
	value, err := json.Marshal(holder{Owner: owner, AcquiredAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshal lock holder: %w", err)
	}

	rev, err := m.bucket.Create(ctx, key, value)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	return &Lock{manager: m, key: key, revision: rev}, nil
}

// Lock is a held commit lock. Release it when the commit finishes.
type Lock struct {
	manager  *Manager
	key      string
	revision uint64
}

// Release frees the lock. Releasing twice is harmless.
func (l *Lock) Release(ctx context.Context) error {
	if l.manager == nil {
		return nil
	}
	err := l.manager.bucket.Delete(ctx, l.key, jetstream.LastRevision(l.revision))
	l.manager = nil
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}

// Key derives the KV key for a (scope, document) pair. KV keys cannot
// contain slashes or arbitrary URI characters, so both parts are folded to
// a dotted token form.
func Key(scopeRef, sourceDocumentURI string) string {
	return keyToken(scopeRef) + "." + keyToken(sourceDocumentURI)
}

func keyToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
