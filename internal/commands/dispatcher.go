package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Completion describes one finished dispatch for observers (the audit store,
// the event publisher). Observers run after the result is decided and can
// never change it.
type Completion struct {
	ID       string
	Command  string
	Action   string
	UserID   string
	Outcome  Outcome
	Error    string
	Duration time.Duration
	At       time.Time
}

// Observer is notified once per completed dispatch. Implementations must not
// block for long; failures are theirs to log.
type Observer interface {
	DispatchCompleted(ctx context.Context, c Completion)
}

// Dispatcher runs authenticated invocations through the registry. Per
// invocation: ensure the user is registered with the ledger, execute the
// handler, notify observers. Registration failure aborts before the handler
// runs.
type Dispatcher struct {
	registry  *Registry
	env       *Env
	observers []Observer
	log       *slog.Logger
}

// NewDispatcher builds a dispatcher. log may be nil.
func NewDispatcher(registry *Registry, env *Env, log *slog.Logger, observers ...Observer) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{registry: registry, env: env, observers: observers, log: log}
}

// Registry exposes the command registry for the discovery routes.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs one invocation to completion and returns its single result.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) Result {
	start := d.env.now()
	var res Result

	handler, ok := d.registry.Get(inv.Command)
	switch {
	case !ok:
		res = BadRequest("Unknown command: " + inv.Command)
	default:
		if err := d.env.Ledger.RegisterUser(ctx, inv.UserID); err != nil {
			// Nothing else may run for an unregistered user.
			res = InternalError(err.Error())
		} else {
			res = handler.Execute(ctx, d.env, inv)
		}
	}

	completion := Completion{
		ID:       uuid.NewString(),
		Command:  inv.Command,
		Action:   invocationAction(inv),
		UserID:   inv.UserID,
		Outcome:  res.Outcome,
		Error:    res.Message,
		Duration: time.Since(start),
		At:       start,
	}
	for _, obs := range d.observers {
		obs.DispatchCompleted(ctx, completion)
	}

	d.log.Info("dispatched command",
		"id", completion.ID,
		"command", inv.Command,
		"user", inv.UserID,
		"outcome", string(res.Outcome),
		"duration", completion.Duration)
	return res
}

// invocationAction pulls the sub-action out of commands that have one.
func invocationAction(inv Invocation) string {
	switch inv.Command {
	case "project", "github":
		action, _ := splitAction(inv.Arg("command"))
		return action
	default:
		return ""
	}
}
