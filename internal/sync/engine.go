// Package sync runs the ticket pipeline: fetch every remote ticket,
// normalize, rebuild the persisted queue snapshot and mirror the result
// into the local cache. Mutations live alongside and refresh the
// snapshot the same way once their remote write succeeds.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/daviddao/notionqueue/internal/clock"
	"github.com/daviddao/notionqueue/internal/notion"
	"github.com/daviddao/notionqueue/internal/state"
	"github.com/daviddao/notionqueue/internal/tickets"
	"github.com/daviddao/notionqueue/internal/types"
)

var (
	// ErrNoScope is returned by Create when no scope tag is configured.
	ErrNoScope = errors.New("no target app configured (set TARGET_APP)")

	// ErrUnknownAssignee is returned when an assignee name has no
	// configured user id.
	ErrUnknownAssignee = errors.New("unknown assignee")

	// ErrNoChanges is returned by SetDependencies when neither relation
	// is supplied.
	ErrNoChanges = errors.New("nothing to update")
)

// Cache receives the full ticket set after every sync.
type Cache interface {
	ReplaceTickets(ts []types.Ticket, queued int, syncedAt string) error
}

// Config wires an Engine.
type Config struct {
	Service *notion.Service
	State   *state.Store

	// Cache is optional.
	Cache Cache

	// TargetApp is the scope tag. Empty matches every ticket, but Create
	// refuses to run without it.
	TargetApp string

	// AgentUserID gates eligibility. Empty makes every ticket eligible.
	AgentUserID string

	// Assignees resolves human names for Create and SetAssignee. Nil
	// knows no one.
	Assignees AssigneeResolver

	Clock  clock.Clock
	Logger *slog.Logger
}

// AssigneeResolver maps a human name to a user id. config.Config
// implements it.
type AssigneeResolver interface {
	ResolveAssignee(name string) (string, bool)
}

// Engine is the read and write surface over the remote ticket store.
type Engine struct {
	service     *notion.Service
	state       *state.Store
	cache       Cache
	targetApp   string
	agentUserID string
	assignees   AssigneeResolver
	clock       clock.Clock
	logger      *slog.Logger
}

// New creates an Engine.
func New(config Config) *Engine {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		service:     config.Service,
		state:       config.State,
		cache:       config.Cache,
		targetApp:   config.TargetApp,
		agentUserID: config.AgentUserID,
		assignees:   config.Assignees,
		clock:       clk,
		logger:      logger,
	}
}

func (e *Engine) filter() tickets.Filter {
	return tickets.Filter{App: e.targetApp}
}

// FetchAll returns every remote ticket, normalized, in listing order.
func (e *Engine) FetchAll(ctx context.Context) ([]types.Ticket, error) {
	pages, err := e.service.QueryAll(ctx)
	if err != nil {
		return nil, err
	}
	return tickets.NormalizeAll(pages, e.agentUserID), nil
}

// ListReady returns the in-scope Open tickets in queue order.
func (e *Engine) ListReady(ctx context.Context) ([]types.Ticket, error) {
	all, err := e.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return tickets.ReadyTickets(all, e.filter()), nil
}

// Sync refreshes the snapshot from the remote store.
func (e *Engine) Sync(ctx context.Context) (*types.SyncState, error) {
	st, _, err := e.SyncWithResult(ctx)
	return st, err
}

// SyncWithResult is Sync plus a summary of the run. A cache failure is
// logged and reported in the summary; it never fails the sync.
func (e *Engine) SyncWithResult(ctx context.Context) (*types.SyncState, *types.SyncResult, error) {
	all, err := e.FetchAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	st, err := e.state.RebuildAndPersist(all, e.filter())
	if err != nil {
		return nil, nil, fmt.Errorf("persist snapshot: %w", err)
	}

	result := &types.SyncResult{
		Fetched:    len(all),
		Queued:     len(st.Queue),
		Ready:      len(tickets.ReadyTickets(all, e.filter())),
		History:    len(st.History),
		LastSynced: st.LastSynced,
	}

	if e.cache != nil {
		if err := e.cache.ReplaceTickets(all, len(st.Queue), st.LastSynced); err != nil {
			e.logger.Warn("ticket cache not updated", "err", err)
			result.CacheError = err.Error()
		}
	}

	e.logger.Debug("synced", "fetched", result.Fetched, "queued", result.Queued, "ready", result.Ready)
	return st, result, nil
}

// FetchDetails returns one ticket together with its rendered page body.
func (e *Engine) FetchDetails(ctx context.Context, id string) (*types.Details, error) {
	page, err := e.service.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	blocks, err := e.service.BlockChildren(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", id, err)
	}
	return &types.Details{
		Ticket:      tickets.Normalize(page, e.agentUserID),
		Description: notion.RenderBlocks(blocks),
	}, nil
}
