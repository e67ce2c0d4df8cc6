package chat

import (
	"context"
	"fmt"
	"time"
)

// System-wide chat availability states, in the order they are decided: a
// disabled feature wins over agent presence, agent absence wins over
// capacity math.
const (
	StateDisabled = "chat_disabled"
	StateOffline  = "offline"
	StateOnline   = "online"
	StateNoSeats  = "no_seats_available"
)

// SystemState is the availability verdict handed to clients. Queue
// carries the number of free seats (clamped to zero) when the state is
// no_seats_available, for display as queue-depth information.
type SystemState struct {
	State string `json:"state"`
	Queue int    `json:"queue,omitempty"`
}

// Oracle derives the single system-wide chat state from the feature
// flag, recent agent activity and seat accounting. It is read-only;
// transient races against concurrent session changes self-correct on the
// next call.
type Oracle struct {
	flags    FlagStore
	registry *Registry
	seats    *Accountant
	window   time.Duration
}

func NewOracle(flags FlagStore, registry *Registry, seats *Accountant, window time.Duration) *Oracle {
	if window <= 0 {
		window = DefaultPresenceWindow
	}
	return &Oracle{
		flags:    flags,
		registry: registry,
		seats:    seats,
		window:   window,
	}
}

// SystemState evaluates the three inputs in strict short-circuit order:
// feature flag, agent presence, seat capacity. An agent with capacity but
// no recent heartbeat is indistinguishable from no agent at all.
func (o *Oracle) SystemState(ctx context.Context) (*SystemState, error) {
	enabled, err := o.flags.IsChatEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("read chat flag: %w", err)
	}
	if !enabled {
		return &SystemState{State: StateDisabled}, nil
	}

	agents, err := o.registry.ListActive(ctx, o.window)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return &SystemState{State: StateOffline}, nil
	}

	total := 0
	for _, agent := range agents {
		total += agent.Concurrent
	}
	count, err := o.seats.ActiveChatCount(ctx)
	if err != nil {
		return nil, err
	}

	if count >= total {
		queue := total - count
		if queue < 0 {
			queue = 0
		}
		return &SystemState{State: StateNoSeats, Queue: queue}, nil
	}
	return &SystemState{State: StateOnline}, nil
}
