// Package types defines core data structures for notionqueue.
package types

import "time"

// Ticket is the canonical form of one remote ticket page.
// Empty strings stand for absent values.
type Ticket struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary,omitempty"`
	Status         string   `json:"status"`
	Area           string   `json:"area,omitempty"`
	App            string   `json:"app,omitempty"`
	Type           string   `json:"type,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	BlockedBy      []string `json:"blocked_by"`
	Blocks         []string `json:"blocks"`
	Branch         string   `json:"branch,omitempty"`
	Commit         string   `json:"commit,omitempty"`
	Feature        string   `json:"feature,omitempty"`
	Link           string   `json:"link,omitempty"`
	ResolvedAt     string   `json:"resolved_at,omitempty"`
	Assignees      []string `json:"assignees"`
	CreatedTime    string   `json:"created_time,omitempty"`
	LastEditedTime string   `json:"last_edited_time,omitempty"`
	Eligible       bool     `json:"eligible"`
}

// EffectivePriority returns the priority used for ordering. Tickets
// without a priority rank with the lowest one.
func (t *Ticket) EffectivePriority() string {
	if t.Priority == "" {
		return PriorityLowest
	}
	return t.Priority
}

// IsBlocked reports whether the ticket lists any dependency.
func (t *Ticket) IsBlocked() bool {
	return len(t.BlockedBy) > 0
}

// QueueItem is the projection of a Ticket kept in the persisted snapshot.
type QueueItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Area      string   `json:"area,omitempty"`
	Status    string   `json:"status"`
	Priority  string   `json:"priority,omitempty"`
	BlockedBy []string `json:"blocked_by"`
	Blocks    []string `json:"blocks"`
	Branch    string   `json:"branch,omitempty"`
}

// HistoryEntry records one action taken on a ticket. Entries are never
// rewritten once persisted.
type HistoryEntry struct {
	TicketID  string `json:"ticket_id"`
	Title     string `json:"title"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

// SyncState is the persisted snapshot.
type SyncState struct {
	LastSynced string         `json:"last_synced"`
	Queue      []QueueItem    `json:"queue"`
	History    []HistoryEntry `json:"history"`
}

// Details is a ticket together with its rendered page body.
type Details struct {
	Ticket      Ticket `json:"ticket"`
	Description string `json:"description"`
}

// UntitledTitle is used when the remote page carries no title.
const UntitledTitle = "(untitled)"

// Status constants.
const (
	StatusOpen           = "Open"
	StatusInProgress     = "In Progress"
	StatusOnHold         = "On hold"
	StatusInReview       = "In Review"
	StatusReviewAIFix    = "Review AI Fix"
	StatusDone           = "Done"
	StatusBlockedByHuman = "Blocked by human"
)

// ValidStatuses is the set of allowed status values.
var ValidStatuses = []string{
	StatusOpen, StatusInProgress, StatusOnHold, StatusInReview,
	StatusReviewAIFix, StatusDone, StatusBlockedByHuman,
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ExcludedStatuses are never part of the active queue.
var ExcludedStatuses = []string{StatusDone, StatusBlockedByHuman, StatusOnHold}

// IsExcludedStatus reports whether tickets in status s are left out of
// the active queue.
func IsExcludedStatus(s string) bool {
	for _, v := range ExcludedStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// StampsResolution reports whether moving a ticket into status s also
// sets its resolved-at date.
func StampsResolution(s string) bool {
	return s == StatusDone || s == StatusReviewAIFix
}

// Area constants.
const (
	AreaFrontend = "Frontend"
	AreaBackend  = "Backend"
	AreaGrowth   = "Growth"
	AreaDelivery = "Delivery"
	AreaDocs     = "Docs"
)

// ValidAreas is the set of allowed area values.
var ValidAreas = []string{AreaFrontend, AreaBackend, AreaGrowth, AreaDelivery, AreaDocs}

// IsValidArea checks if an area string is valid.
func IsValidArea(a string) bool {
	for _, v := range ValidAreas {
		if v == a {
			return true
		}
	}
	return false
}

// Priority constants. They compare correctly as plain strings.
const (
	PriorityP0 = "P0"
	PriorityP1 = "P1"
	PriorityP2 = "P2"
	PriorityP3 = "P3"
	PriorityP4 = "P4"

	PriorityLowest = PriorityP4
)

// ValidPriorities is the set of allowed priority values.
var ValidPriorities = []string{PriorityP0, PriorityP1, PriorityP2, PriorityP3, PriorityP4}

// IsValidPriority checks if a priority string is valid.
func IsValidPriority(p string) bool {
	for _, v := range ValidPriorities {
		if v == p {
			return true
		}
	}
	return false
}

// History actions.
const (
	ActionCreated      = "created"
	ActionStarted      = "started"
	ActionDone         = "done"
	ActionStatusChange = "status_change"
	ActionArchived     = "archived"
)

// ActionForStatus maps a status transition to the history action that
// records it.
func ActionForStatus(status string) string {
	switch status {
	case StatusInProgress:
		return ActionStarted
	case StatusDone:
		return ActionDone
	default:
		return ActionStatusChange
	}
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Fetched    int    `json:"fetched"`
	Queued     int    `json:"queued"`
	Ready      int    `json:"ready"`
	History    int    `json:"history"`
	LastSynced string `json:"last_synced"`
	CacheError string `json:"cache_error,omitempty"`
}

// Timestamp formats t the way every persisted timestamp is written.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
