package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type EventKind string

const (
	EventTransfer             EventKind = "Transfer"
	EventApproval             EventKind = "Approval"
	EventApprovalForAll       EventKind = "ApprovalForAll"
	EventOwnershipTransferred EventKind = "OwnershipTransferred"
)

// Event is an ordered record of a state transition. Mints are transfers from
// the zero address and burns are transfers to it.
//
// For Approval events From is the token owner and To the approved spender. For
// ApprovalForAll events From is the owner, Operator the operator and Approved
// the new flag.
type Event struct {
	ID       uuid.UUID      `json:"id"`
	Sequence uint64         `json:"sequence"`
	Kind     EventKind      `json:"kind"`
	TokenID  uint64         `json:"tokenID,omitempty"`
	From     common.Address `json:"from"`
	To       common.Address `json:"to"`
	Operator common.Address `json:"operator,omitempty"`
	Approved bool           `json:"approved,omitempty"`
}

// EventSink receives the events of every successful operation, in order. If
// Publish returns an error the operation is rolled back and the error is
// returned to its caller.
type EventSink interface {
	Publish(events []Event) error
}

// EventSinkFunc adapts a function to an EventSink.
type EventSinkFunc func(events []Event) error

func (f EventSinkFunc) Publish(events []Event) error {
	return f(events)
}

// LogSink writes every event to a logrus logger.
type LogSink struct {
	Logger logrus.FieldLogger
}

func (s LogSink) Publish(events []Event) error {
	for _, event := range events {
		s.Logger.WithFields(logrus.Fields{
			"event":    event.Kind,
			"id":       event.ID,
			"token_id": event.TokenID,
			"from":     event.From.Hex(),
			"to":       event.To.Hex(),
		}).Info("collection event")
	}
	return nil
}

// DefaultEventRetention is the number of events a collection keeps unless
// WithEventRetention says otherwise.
const DefaultEventRetention = 10000

func (c *Collection) emit(event Event) {
	event.ID = uuid.New()
	event.Sequence = c.eventBase + uint64(len(c.events))
	c.events = append(c.events, event)
	c.journal.append(addEventChange{})
}

func (c *Collection) emitTransfer(from, to common.Address, tokenID uint64) {
	c.emit(Event{Kind: EventTransfer, From: from, To: to, TokenID: tokenID})
}

// Events returns a copy of the collection's event log.
func (c *Collection) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	events := make([]Event, len(c.events))
	copy(events, c.events)
	return events
}

// EventsFrom returns up to limit retained events with sequence numbers of at
// least offset, and the offset to continue from. Events that have been dropped
// from the log are skipped.
func (c *Collection) EventsFrom(offset uint64, limit int) ([]Event, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if offset < c.eventBase {
		offset = c.eventBase
	}
	end := c.eventBase + uint64(len(c.events))
	if offset >= end || limit <= 0 {
		return []Event{}, offset
	}

	start := offset - c.eventBase
	stop := uint64(len(c.events))
	if remaining := stop - start; remaining > uint64(limit) {
		stop = start + uint64(limit)
	}
	events := make([]Event, stop-start)
	copy(events, c.events[start:stop])
	return events, c.eventBase + stop
}

// trimEvents drops the oldest events beyond the retention limit. It only runs
// after a commit, so journal entries never refer to dropped events.
func (c *Collection) trimEvents() {
	if c.eventRetention <= 0 || len(c.events) <= c.eventRetention {
		return
	}
	drop := len(c.events) - c.eventRetention
	c.events = c.events[drop:]
	c.eventBase += uint64(drop)
}
