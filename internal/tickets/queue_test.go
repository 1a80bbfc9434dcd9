package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddao/notionqueue/internal/types"
)

func ticket(id, status, priority string, blockedBy ...string) types.Ticket {
	if blockedBy == nil {
		blockedBy = []string{}
	}
	return types.Ticket{
		ID:        id,
		Title:     id,
		Status:    status,
		Priority:  priority,
		App:       "web",
		BlockedBy: blockedBy,
		Blocks:    []string{},
		Eligible:  true,
	}
}

func ids(ts []types.Ticket) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestActiveQueueOrdering(t *testing.T) {
	all := []types.Ticket{
		ticket("blocked-p0", types.StatusOpen, types.PriorityP0, "x"),
		ticket("p3", types.StatusInProgress, types.PriorityP3),
		ticket("none", types.StatusOpen, ""),
		ticket("p1", types.StatusInReview, types.PriorityP1),
		ticket("p4", types.StatusOpen, types.PriorityP4),
		ticket("blocked-p2", types.StatusOpen, types.PriorityP2, "y"),
	}

	got := ActiveQueue(all, Filter{App: "web"})

	assert.Equal(t, []string{"p1", "p3", "none", "p4", "blocked-p0", "blocked-p2"}, ids(got),
		"ties keep listing order: none precedes p4")
}

func TestActiveQueueIsSortedPairwise(t *testing.T) {
	priorities := []string{"", types.PriorityP0, types.PriorityP2, types.PriorityP4, types.PriorityP1}
	var all []types.Ticket
	for i := 0; i < 40; i++ {
		var blockers []string
		if i%3 == 0 {
			blockers = []string{"dep"}
		}
		all = append(all, ticket(string(rune('a'+i%26))+string(rune('0'+i/26)), types.StatusOpen, priorities[i%len(priorities)], blockers...))
	}

	got := ActiveQueue(all, Filter{})
	require.Len(t, got, len(all))
	for i := 0; i+1 < len(got); i++ {
		assert.LessOrEqual(t, Compare(got[i], got[i+1]), 0, "items %d and %d out of order", i, i+1)
	}
}

func TestActiveQueueFilters(t *testing.T) {
	otherApp := ticket("other-app", types.StatusOpen, types.PriorityP0)
	otherApp.App = "mobile"
	notMine := ticket("not-mine", types.StatusOpen, types.PriorityP0)
	notMine.Eligible = false

	all := []types.Ticket{
		ticket("open", types.StatusOpen, types.PriorityP2),
		ticket("review-fix", types.StatusReviewAIFix, types.PriorityP2),
		ticket("done", types.StatusDone, types.PriorityP0),
		ticket("human", types.StatusBlockedByHuman, types.PriorityP0),
		ticket("hold", types.StatusOnHold, types.PriorityP0),
		otherApp,
		notMine,
	}

	assert.Equal(t, []string{"open", "review-fix"}, ids(ActiveQueue(all, Filter{App: "web"})))
	assert.Equal(t, []string{"other-app", "open", "review-fix"}, ids(ActiveQueue(all, Filter{})),
		"no scope matches every app, ordered by priority")
}

func TestReadyTicketsOnlyOpen(t *testing.T) {
	all := []types.Ticket{
		ticket("progress", types.StatusInProgress, types.PriorityP0),
		ticket("open-blocked", types.StatusOpen, types.PriorityP0, "dep"),
		ticket("open", types.StatusOpen, types.PriorityP3),
		ticket("review", types.StatusInReview, types.PriorityP1),
	}

	assert.Equal(t, []string{"open", "open-blocked"}, ids(ReadyTickets(all, Filter{App: "web"})))
}

func TestNullPriorityRanksAsLowestUnblocked(t *testing.T) {
	x := types.Ticket{
		ID: "x", Title: "x", Status: types.StatusInProgress, App: "X",
		BlockedBy: []string{}, Blocks: []string{}, Eligible: true,
	}
	p3 := x
	p3.ID, p3.Priority = "p3", types.PriorityP3
	blocked := x
	blocked.ID, blocked.Priority, blocked.BlockedBy = "blocked", types.PriorityP0, []string{"dep"}

	got := ActiveQueue([]types.Ticket{blocked, x, p3}, Filter{App: "X"})

	assert.Equal(t, []string{"p3", "x", "blocked"}, ids(got))
	assert.Equal(t, types.PriorityP4, got[1].EffectivePriority())
}

func TestToQueueItems(t *testing.T) {
	tk := ticket("a", types.StatusOpen, types.PriorityP1, "b")
	tk.Area = types.AreaBackend
	tk.Branch = "ticket/a"
	tk.Blocks = nil

	items := ToQueueItems([]types.Ticket{tk})

	require.Len(t, items, 1)
	assert.Equal(t, types.QueueItem{
		ID: "a", Title: "a", Area: types.AreaBackend, Status: types.StatusOpen,
		Priority: types.PriorityP1, BlockedBy: []string{"b"}, Blocks: []string{}, Branch: "ticket/a",
	}, items[0])
}
