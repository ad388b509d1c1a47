package notification

import (
	"context"
	"sync"
	"time"

	"github.com/clearledger/policykit/internal/clock"
	"github.com/clearledger/policykit/internal/idgen"
	"github.com/clearledger/policykit/service/messaging"
	qmem "github.com/clearledger/policykit/service/messaging/memory"
)

// Type classifies an approval workflow notification.
type Type string

const (
	TypeApprovalRequest  Type = "approval_request"
	TypeApprovalComplete Type = "approval_complete"
	TypeApprovalRejected Type = "approval_rejected"
)

// Notification is one entry of the append-only notification list.
type Notification struct {
	ID         string    `json:"id"`
	PolicyID   string    `json:"policyId"`
	PolicyName string    `json:"policyName"`
	Type       Type      `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Service keeps an append-only notification list keyed by policy id and
// notification type. Appends are idempotent per key: transitions that fire
// repeatedly for the same policy produce a single record. Every accepted
// record is also fanned out on the service queue.
type Service struct {
	mu      sync.RWMutex
	records []*Notification
	seen    map[key]bool
	events  *qmem.Queue[Notification]
}

type key struct {
	policyID string
	kind     Type
}

// Option customises a notification Service.
type Option func(*Service)

// WithQueueConfig overrides the fan-out queue configuration.
func WithQueueConfig(config qmem.Config) Option {
	return func(s *Service) { s.events = qmem.NewQueue[Notification](config) }
}

// New creates an empty notification service.
func New(options ...Option) *Service {
	ret := &Service{
		seen:   make(map[key]bool),
		events: qmem.NewQueue[Notification](qmem.DefaultConfig()),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Append records a notification unless one of the same type already exists
// for the policy. It returns the stored record and whether a new one was
// appended.
func (s *Service) Append(ctx context.Context, policyID, policyName string, kind Type) (*Notification, bool) {
	s.mu.Lock()
	k := key{policyID: policyID, kind: kind}
	if s.seen[k] {
		existing := s.lookup(policyID, kind)
		s.mu.Unlock()
		return existing, false
	}
	n := &Notification{
		ID:         idgen.New(),
		PolicyID:   policyID,
		PolicyName: policyName,
		Type:       kind,
		Timestamp:  clock.Now(),
	}
	s.seen[k] = true
	s.records = append(s.records, n)
	s.mu.Unlock()

	// best-effort fan-out, the list is the source of truth
	_ = s.events.Publish(ctx, n)
	return n, true
}

func (s *Service) lookup(policyID string, kind Type) *Notification {
	for _, n := range s.records {
		if n.PolicyID == policyID && n.Type == kind {
			return n
		}
	}
	return nil
}

// List returns all notifications in append order.
func (s *Service) List(_ context.Context) []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Notification, len(s.records))
	copy(out, s.records)
	return out
}

// Unread returns the notifications not yet marked as read.
func (s *Service) Unread(_ context.Context) []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Notification
	for _, n := range s.records {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out
}

// MarkRead marks a single notification as read; it reports whether the id
// was found.
func (s *Service) MarkRead(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.records {
		if n.ID == id {
			n.Read = true
			return true
		}
	}
	return false
}

// MarkAllRead marks every notification as read.
func (s *Service) MarkAllRead(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.records {
		n.Read = true
	}
}

// Queue exposes the fan-out queue of accepted notifications.
func (s *Service) Queue() messaging.Queue[Notification] {
	return s.events
}
