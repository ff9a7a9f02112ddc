package registry

import (
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/kvdb"
	"go.uber.org/zap"

	"github.com/commitd-io/commitd/auth"
	"github.com/commitd-io/commitd/metrics"
	"github.com/commitd-io/commitd/registry/store"
	"github.com/commitd-io/commitd/types"
)

// subscriberBufferSize is the per-subscriber event channel capacity; events
// beyond it are dropped rather than blocking acceptance
const subscriberBufferSize = 32

var _ CommitmentRegistry = (*LocalRegistry)(nil)

// LocalRegistry is the commit engine backed by a local database. A single
// mutex serializes acceptance and consumption so the atomic check-and-delete
// contract holds even when the registry is hosted as a standalone service
// under concurrent requests.
type LocalRegistry struct {
	mu         sync.Mutex
	cs         *store.CommitmentStore
	authorizer *auth.Authorizer
	logger     *zap.Logger
	metrics    *metrics.RegistryMetrics

	// ttl of zero disables expiry
	ttl time.Duration

	subMu       sync.RWMutex
	subscribers map[uuid.UUID]chan types.CommitEvent
}

func NewLocalRegistry(dbBackend kvdb.Backend, authorizer *auth.Authorizer, ttl time.Duration, logger *zap.Logger) (*LocalRegistry, error) {
	cs, err := store.NewCommitmentStore(dbBackend)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize commitment store: %w", err)
	}

	return &LocalRegistry{
		cs:          cs,
		authorizer:  authorizer,
		logger:      logger,
		metrics:     metrics.NewRegistryMetrics(),
		ttl:         ttl,
		subscribers: make(map[uuid.UUID]chan types.CommitEvent),
	}, nil
}

// Commit records a commitment for the caller itself
func (lr *LocalRegistry) Commit(caller types.Principal, commitment types.Commitment) error {
	_, err := lr.CommitFrom(CommitRequest{
		Caller:     caller,
		OnBehalfOf: caller,
		Commitment: commitment,
		Value:      sdkmath.ZeroInt(),
	})

	return err
}

// CommitFrom accepts a commitment on behalf of req.OnBehalfOf. On failure
// nothing is recorded and no notification is emitted.
func (lr *LocalRegistry) CommitFrom(req CommitRequest) (uint64, error) {
	if req.Commitment.IsZero() {
		return 0, types.ErrEmptyCommitment
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()

	if err := lr.authorizer.Authorize(
		req.Caller, req.OnBehalfOf, req.Namespace, req.Commitment, req.ExtraData, req.Proof,
	); err != nil {
		lr.metrics.IncrementRejectedCommitsCounter()

		return 0, err
	}

	value := req.Value
	if value.IsNil() {
		value = sdkmath.ZeroInt()
	}

	orderingValue, err := lr.cs.Put(
		req.OnBehalfOf, req.Namespace, req.Commitment, req.ExtraData, value, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to store commitment: %w", err)
	}

	lr.metrics.IncrementAcceptedCommitsCounter()
	lr.metrics.SetLastOrderingValue(float64(orderingValue))

	lr.logger.Info(
		"accepted commitment",
		zap.Uint64("ordering_value", orderingValue),
		zap.String("principal", req.OnBehalfOf.MarshalHex()),
		zap.String("commitment", req.Commitment.MarshalHex()),
	)

	lr.notify(types.CommitEvent{
		OrderingValue: orderingValue,
		Principal:     req.OnBehalfOf,
		Namespace:     req.Namespace,
		Commitment:    req.Commitment,
		ExtraData:     req.ExtraData,
	})

	return orderingValue, nil
}

// ConsumeIfMatches validates candidate against the stored record for the
// principal and deletes it on match. When a TTL is configured, records older
// than it are treated as absent.
func (lr *LocalRegistry) ConsumeIfMatches(principal types.Principal, namespace []byte, candidate types.Commitment) (*types.CommitmentRecord, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	var staleBefore time.Time
	if lr.ttl > 0 {
		staleBefore = time.Now().UTC().Add(-lr.ttl)
	}

	record, err := lr.cs.TakeIfMatches(principal, namespace, candidate, staleBefore)
	if err != nil {
		lr.metrics.IncrementNoMatchRevealsCounter()

		return nil, err
	}

	lr.metrics.IncrementConsumedCommitmentsCounter()

	lr.logger.Info(
		"consumed commitment",
		zap.Uint64("ordering_value", record.OrderingValue),
		zap.String("principal", principal.MarshalHex()),
	)

	return record, nil
}

// SupportsCommitFrom reports support for the general commit-on-behalf surface
func (lr *LocalRegistry) SupportsCommitFrom() bool {
	return true
}

// Records returns the live records within the namespace; nil matches all
func (lr *LocalRegistry) Records(namespace []byte) ([]*types.CommitmentRecord, error) {
	return lr.cs.ListRecords(namespace)
}

// LastOrderingValue returns the last assigned ordering value
func (lr *LocalRegistry) LastOrderingValue() (uint64, error) {
	return lr.cs.LastOrderingValue()
}

// PruneExpired removes records older than the configured TTL; a no-op when
// expiry is disabled
func (lr *LocalRegistry) PruneExpired() (uint64, error) {
	if lr.ttl <= 0 {
		return 0, nil
	}

	pruned, err := lr.cs.PruneExpired(time.Now().UTC().Add(-lr.ttl))
	if err != nil {
		return 0, err
	}

	if pruned > 0 {
		lr.metrics.AddPrunedCommitments(float64(pruned))
		lr.logger.Info("pruned expired commitments", zap.Uint64("count", pruned))
	}

	return pruned, nil
}

// SubscribeCommits registers a commit notification subscriber. The returned
// channel receives one event per accepted commit; slow subscribers may miss
// events rather than block acceptance.
func (lr *LocalRegistry) SubscribeCommits() (uuid.UUID, <-chan types.CommitEvent) {
	lr.subMu.Lock()
	defer lr.subMu.Unlock()

	id := uuid.New()
	ch := make(chan types.CommitEvent, subscriberBufferSize)
	lr.subscribers[id] = ch
	lr.metrics.SetCommitSubscribers(float64(len(lr.subscribers)))

	return id, ch
}

// UnsubscribeCommits removes a subscriber and closes its channel
func (lr *LocalRegistry) UnsubscribeCommits(id uuid.UUID) {
	lr.subMu.Lock()
	defer lr.subMu.Unlock()

	if ch, ok := lr.subscribers[id]; ok {
		close(ch)
		delete(lr.subscribers, id)
	}
	lr.metrics.SetCommitSubscribers(float64(len(lr.subscribers)))
}

func (lr *LocalRegistry) notify(ev types.CommitEvent) {
	lr.subMu.RLock()
	defer lr.subMu.RUnlock()

	for id, ch := range lr.subscribers {
		select {
		case ch <- ev:
		default:
			lr.metrics.IncrementDroppedNotificationsCounter()
			lr.logger.Warn(
				"dropping commit notification for slow subscriber",
				zap.String("subscriber", id.String()),
				zap.Uint64("ordering_value", ev.OrderingValue),
			)
		}
	}
}

// Close releases all subscribers; the database backend is owned and closed
// by the caller
func (lr *LocalRegistry) Close() error {
	lr.subMu.Lock()
	defer lr.subMu.Unlock()

	for id, ch := range lr.subscribers {
		close(ch)
		delete(lr.subscribers, id)
	}
	lr.metrics.SetCommitSubscribers(0)

	return nil
}
