// Package reveal implements the consuming side of the commit-reveal flow:
// recompute the candidate digest from the action parameters and the secret
// salt, consume the stored commitment, and only then run the action.
package reveal

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/commitd-io/commitd/types"
)

// Consumer is the registry capability an adapter needs
type Consumer interface {
	ConsumeIfMatches(principal types.Principal, namespace []byte, candidate types.Commitment) (*types.CommitmentRecord, error)
}

// Action is the reveal effect, invoked with the revealed parameters and the
// consumed record (its extra data often carries adapter-specific payload)
type Action func(record *types.CommitmentRecord, params ...[]byte) error

// Adapter validates and consumes commitments before running an action.
// Consumption is committed before the action starts, so a re-entrant or
// replayed reveal of the same record always fails.
type Adapter struct {
	consumer  Consumer
	namespace []byte
	action    Action
	logger    *zap.Logger
}

func NewAdapter(consumer Consumer, namespace []byte, action Action, logger *zap.Logger) *Adapter {
	return &Adapter{
		consumer:  consumer,
		namespace: namespace,
		action:    action,
		logger:    logger,
	}
}

// Reveal recomputes the candidate commitment from params and salt, consumes
// the matching record, and runs the action. On ErrNoMatch the reveal aborts
// with no side effect. An action failure after consumption does not
// resurrect the record.
func (a *Adapter) Reveal(principal types.Principal, salt []byte, params ...[]byte) (*types.CommitmentRecord, error) {
	candidate := types.ComputeCommitment(salt, params...)

	record, err := a.consumer.ConsumeIfMatches(principal, a.namespace, candidate)
	if err != nil {
		return nil, fmt.Errorf("reveal rejected for %s: %w", principal.MarshalHex(), err)
	}

	if err := a.action(record, params...); err != nil {
		a.logger.Error(
			"reveal action failed after consumption",
			zap.String("principal", principal.MarshalHex()),
			zap.Uint64("ordering_value", record.OrderingValue),
			zap.Error(err),
		)

		return record, fmt.Errorf("reveal action failed: %w", err)
	}

	return record, nil
}
