// Package commands holds the slash-command registry, the per-command
// handlers, and the dispatcher that runs them. The dispatch pipeline for
// every inbound command is: ensure the initiator is registered with the
// ledger, run the handler, then hand one reply (or one error) back to the
// caller.
package commands

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/foundrgate/foundrgate/internal/ledger"
	"github.com/foundrgate/foundrgate/internal/processor"
)

// Param describes one command parameter for the platform-facing definition.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Definition is the schema a chat platform renders for one command.
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params,omitempty"`
}

// Document is the full bot definition served on the discovery routes.
type Document struct {
	Description string       `json:"description"`
	Commands    []Definition `json:"commands"`
}

// Invocation is one authenticated command from a platform user.
type Invocation struct {
	UserID  string
	Command string
	Args    map[string]string
}

// Arg returns a trimmed argument value, or "" when absent.
func (inv Invocation) Arg(name string) string {
	return strings.TrimSpace(inv.Args[name])
}

// Outcome classifies how a dispatch ended.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeBadRequest    Outcome = "bad_request"
	OutcomeInternalError Outcome = "internal_error"
	OutcomeRateLimited   Outcome = "rate_limited"
)

// Result is the single outcome of one dispatch. Exactly one of Reply or
// Message is meaningful depending on the outcome.
type Result struct {
	Outcome Outcome
	Reply   string // OutcomeSuccess
	Message string // everything else
}

func Success(reply string) Result {
	return Result{Outcome: OutcomeSuccess, Reply: reply}
}

func BadRequest(message string) Result {
	return Result{Outcome: OutcomeBadRequest, Message: message}
}

func InternalError(message string) Result {
	return Result{Outcome: OutcomeInternalError, Message: message}
}

func RateLimited() Result {
	return Result{Outcome: OutcomeRateLimited, Message: "too many requests"}
}

// Ledger is the slice of the ledger client the handlers need.
type Ledger interface {
	RegisterUser(ctx context.Context, id string) error
	StoreChatMessage(ctx context.Context, id string, msg ledger.ChatMessage) error
	GetMessages(ctx context.Context, id string) ([]ledger.ChatMessage, error)
	GenerateDashboardToken(ctx context.Context, id string) (string, error)
	StoreRepoConnection(ctx context.Context, id, token, selectedRepo string) error
	StoreIssue(ctx context.Context, id string, issue ledger.Issue) error
	UpdateSelectedRepo(ctx context.Context, id, repo string) error
	StoreTaskConnection(ctx context.Context, id, token, workspaceID string, projects []ledger.Project) error
	StoreTask(ctx context.Context, id string, task ledger.Task) error
}

// Processor is the slice of the processor client the handlers need.
type Processor interface {
	Process(ctx context.Context, command string, args map[string]string) (*processor.BotResponse, error)
}

// Env bundles the shared dependencies handlers run against. Built once at
// startup and never mutated.
type Env struct {
	Ledger           Ledger
	Processor        Processor
	DashboardBaseURL string
	Now              func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Handler executes one named command.
type Handler interface {
	Definition() Definition
	Execute(ctx context.Context, env *Env, inv Invocation) Result
}

// Registry maps command names to handlers. Immutable after construction.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a registry over the given handlers, keyed by their
// definition names.
func NewRegistry(handlers ...Handler) *Registry {
	m := make(map[string]Handler, len(handlers))
	for _, h := range handlers {
		m[h.Definition().Name] = h
	}
	return &Registry{handlers: m}
}

// DefaultRegistry wires up the full command set.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&AskCommand{},
		&ProjectCommand{},
		&GitHubCommand{},
		&DashboardCommand{},
		&HelpCommand{},
	)
}

// Get looks up a handler by command name.
func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[strings.TrimSpace(name)]
	return h, ok
}

// Document assembles the platform-facing bot definition, commands sorted by
// name. Extra definitions (the per-expert ask variants discovered from the
// processor roster) are appended before sorting.
func (r *Registry) Document(description string, extra ...Definition) Document {
	defs := make([]Definition, 0, len(r.handlers)+len(extra))
	for _, h := range r.handlers {
		defs = append(defs, h.Definition())
	}
	defs = append(defs, extra...)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return Document{Description: description, Commands: defs}
}

// ExpertDefinitions turns the processor roster into per-expert ask command
// definitions (ask_benny, ask_felix, ...).
func ExpertDefinitions(roster map[string]processor.ExpertInfo) []Definition {
	defs := make([]Definition, 0, len(roster))
	for name, info := range roster {
		defs = append(defs, Definition{
			Name:        "ask_" + name,
			Description: "Ask " + name + " (" + info.Role + ") about " + info.Expertise,
			Params: []Param{{
				Name:        "question",
				Description: "Your question",
				Required:    true,
			}},
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
