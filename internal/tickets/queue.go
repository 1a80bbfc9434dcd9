package tickets

import (
	"cmp"
	"slices"

	"github.com/daviddao/notionqueue/internal/types"
)

// Filter holds the selection inputs shared by the queue views.
type Filter struct {
	// App is the scope tag. Empty matches every ticket.
	App string
}

func (f Filter) matches(t *types.Ticket) bool {
	if f.App != "" && t.App != f.App {
		return false
	}
	return t.Eligible && !types.IsExcludedStatus(t.Status)
}

// ActiveQueue returns the in-scope, eligible tickets that are not in an
// excluded status, ordered by Sort.
func ActiveQueue(all []types.Ticket, f Filter) []types.Ticket {
	var out []types.Ticket
	for i := range all {
		if f.matches(&all[i]) {
			out = append(out, all[i])
		}
	}
	Sort(out)
	return out
}

// ReadyTickets narrows the active queue to tickets still Open.
func ReadyTickets(all []types.Ticket, f Filter) []types.Ticket {
	var out []types.Ticket
	for i := range all {
		if f.matches(&all[i]) && all[i].Status == types.StatusOpen {
			out = append(out, all[i])
		}
	}
	Sort(out)
	return out
}

// Sort orders tickets unblocked first, then by priority (P0 first, none
// counts as P4). Equal keys keep their input order.
func Sort(ts []types.Ticket) {
	slices.SortStableFunc(ts, Compare)
}

// Compare is the queue ordering.
func Compare(a, b types.Ticket) int {
	if c := compareBool(a.IsBlocked(), b.IsBlocked()); c != 0 {
		return c
	}
	return cmp.Compare(a.EffectivePriority(), b.EffectivePriority())
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// ToQueueItems projects tickets onto the persisted queue shape.
func ToQueueItems(ts []types.Ticket) []types.QueueItem {
	items := make([]types.QueueItem, 0, len(ts))
	for _, t := range ts {
		items = append(items, types.QueueItem{
			ID:        t.ID,
			Title:     t.Title,
			Area:      t.Area,
			Status:    t.Status,
			Priority:  t.Priority,
			BlockedBy: orEmpty(t.BlockedBy),
			Blocks:    orEmpty(t.Blocks),
			Branch:    t.Branch,
		})
	}
	return items
}
