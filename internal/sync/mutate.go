package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/daviddao/notionqueue/internal/notion"
	"github.com/daviddao/notionqueue/internal/tickets"
	"github.com/daviddao/notionqueue/internal/types"
)

// CreateInput describes a new ticket. Only Title and Area are required.
type CreateInput struct {
	Title    string
	Area     string
	Body     string
	Priority string
	Assignee string
	Type     string
}

// Create adds a ticket in status Open, tagged with the configured scope.
// The body is split into paragraph blocks of at most
// notion.MaxTextLength characters each.
func (e *Engine) Create(ctx context.Context, in CreateInput) (types.Ticket, error) {
	if e.targetApp == "" {
		return types.Ticket{}, ErrNoScope
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return types.Ticket{}, fmt.Errorf("title is required")
	}
	if !types.IsValidArea(in.Area) {
		return types.Ticket{}, fmt.Errorf("invalid area %q (want one of %s)", in.Area, strings.Join(types.ValidAreas, ", "))
	}
	if in.Priority != "" && !types.IsValidPriority(in.Priority) {
		return types.Ticket{}, fmt.Errorf("invalid priority %q (want one of %s)", in.Priority, strings.Join(types.ValidPriorities, ", "))
	}

	props := map[string]any{
		tickets.PropTitle:  notion.TitleValue(title),
		tickets.PropStatus: notion.StatusValue(types.StatusOpen),
		tickets.PropArea:   notion.MultiSelectValue(in.Area),
		tickets.PropApp:    notion.MultiSelectValue(e.targetApp),
	}
	if in.Priority != "" {
		props[tickets.PropPriority] = notion.SelectValue(in.Priority)
	}
	if in.Type != "" {
		props[tickets.PropType] = notion.SelectValue(in.Type)
	}
	if in.Assignee != "" {
		userID, err := e.resolveAssignee(in.Assignee)
		if err != nil {
			return types.Ticket{}, err
		}
		props[tickets.PropAssignee] = notion.PeopleValue([]string{userID})
	}

	page, err := e.service.CreatePage(ctx, props, notion.ParagraphBlocks(in.Body))
	if page == nil {
		return types.Ticket{}, err
	}
	t := tickets.Normalize(page, e.agentUserID)
	if t.Title == types.UntitledTitle {
		t.Title = title
	}

	// A page whose body was only partly written still exists remotely.
	e.record(ctx, t.ID, t.Title, types.ActionCreated)
	return t, err
}

// SetStatus moves a ticket to status. Done and Review AI Fix also stamp
// the resolved-at date in the same write.
func (e *Engine) SetStatus(ctx context.Context, id, status string) (types.Ticket, error) {
	if !types.IsValidStatus(status) {
		return types.Ticket{}, fmt.Errorf("invalid status %q (want one of %s)", status, strings.Join(types.ValidStatuses, ", "))
	}
	props := map[string]any{
		tickets.PropStatus: notion.StatusValue(status),
	}
	if types.StampsResolution(status) {
		props[tickets.PropResolvedAt] = notion.DateStartValue(types.Timestamp(e.clock.Now()))
	}

	t, err := e.update(ctx, "status update", id, props)
	if err != nil {
		return types.Ticket{}, err
	}
	e.record(ctx, t.ID, t.Title, types.ActionForStatus(status))
	return t, nil
}

// SetBranch records the working branch on a ticket.
func (e *Engine) SetBranch(ctx context.Context, id, branch string) (types.Ticket, error) {
	return e.annotate(ctx, "branch update", id, tickets.PropBranch, branch)
}

// SetCommit records the resolving commit on a ticket.
func (e *Engine) SetCommit(ctx context.Context, id, commit string) (types.Ticket, error) {
	return e.annotate(ctx, "commit update", id, tickets.PropCommit, commit)
}

// SetFeature records the feature a ticket belongs to.
func (e *Engine) SetFeature(ctx context.Context, id, feature string) (types.Ticket, error) {
	return e.annotate(ctx, "feature update", id, tickets.PropFeature, feature)
}

func (e *Engine) annotate(ctx context.Context, op, id, prop, value string) (types.Ticket, error) {
	t, err := e.update(ctx, op, id, map[string]any{prop: notion.RichTextValue(value)})
	if err != nil {
		return types.Ticket{}, err
	}
	e.refresh(ctx)
	return t, nil
}

// SetDependencies replaces the ticket's relations. A nil pointer leaves
// that relation untouched; an empty slice clears it.
func (e *Engine) SetDependencies(ctx context.Context, id string, blockedBy, blocks *[]string) (types.Ticket, error) {
	if blockedBy == nil && blocks == nil {
		return types.Ticket{}, ErrNoChanges
	}
	props := map[string]any{}
	if blockedBy != nil {
		props[tickets.PropBlockedBy] = notion.RelationValue(*blockedBy)
	}
	if blocks != nil {
		props[tickets.PropBlocks] = notion.RelationValue(*blocks)
	}

	t, err := e.update(ctx, "dependency update", id, props)
	if err != nil {
		return types.Ticket{}, err
	}
	e.refresh(ctx)
	return t, nil
}

// SetAssignee assigns a ticket to a configured human. The name is
// resolved before anything is sent.
func (e *Engine) SetAssignee(ctx context.Context, id, name string) (types.Ticket, error) {
	userID, err := e.resolveAssignee(name)
	if err != nil {
		return types.Ticket{}, err
	}
	t, err := e.update(ctx, "assignee update", id, map[string]any{
		tickets.PropAssignee: notion.PeopleValue([]string{userID}),
	})
	if err != nil {
		return types.Ticket{}, err
	}
	e.refresh(ctx)
	return t, nil
}

// Archive moves a ticket to the trash.
func (e *Engine) Archive(ctx context.Context, id string) error {
	page, err := e.service.ArchivePage(ctx, id)
	if err != nil {
		return err
	}
	t := tickets.Normalize(page, e.agentUserID)
	if t.ID == "" {
		t.ID = id
	}
	e.record(ctx, t.ID, t.Title, types.ActionArchived)
	return nil
}

func (e *Engine) update(ctx context.Context, op, id string, props map[string]any) (types.Ticket, error) {
	page, err := e.service.UpdatePage(ctx, op, id, props)
	if err != nil {
		return types.Ticket{}, err
	}
	t := tickets.Normalize(page, e.agentUserID)
	if t.ID == "" {
		t.ID = id
	}
	return t, nil
}

func (e *Engine) resolveAssignee(name string) (string, error) {
	if e.assignees == nil {
		return "", fmt.Errorf("%w %q", ErrUnknownAssignee, name)
	}
	userID, ok := e.assignees.ResolveAssignee(name)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownAssignee, name)
	}
	return userID, nil
}

// record appends a history entry and refreshes the snapshot. The remote
// write already happened, so failures here are logged, not returned.
func (e *Engine) record(ctx context.Context, id, title, action string) {
	entry := types.HistoryEntry{
		TicketID:  id,
		Title:     title,
		Action:    action,
		Timestamp: types.Timestamp(e.clock.Now()),
	}
	if err := e.state.AppendHistory(entry); err != nil {
		e.logger.Warn("history entry not saved", "ticket", id, "action", action, "err", err)
	}
	e.refresh(ctx)
}

func (e *Engine) refresh(ctx context.Context) {
	if _, _, err := e.SyncWithResult(ctx); err != nil {
		e.logger.Warn("snapshot refresh failed", "err", err)
	}
}
