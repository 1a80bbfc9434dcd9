package sync

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddao/notionqueue/internal/notion"
	"github.com/daviddao/notionqueue/internal/notion/notiontest"
	"github.com/daviddao/notionqueue/internal/types"
)

// primed returns a harness whose snapshot already exists on disk so
// history entries are kept.
func primed(t *testing.T, configure ...func(*Config)) *harness {
	t.Helper()
	h := newHarness(t, configure...)
	_, err := h.engine.Sync(context.Background())
	require.NoError(t, err)
	return h
}

func history(t *testing.T, h *harness) []types.HistoryEntry {
	t.Helper()
	st, err := h.store.Load()
	require.NoError(t, err)
	return st.History
}

func patchProps(t *testing.T, h *harness, id string) map[string]any {
	t.Helper()
	calls := h.transport.CallsTo(http.MethodPatch, "/pages/"+id)
	require.NotEmpty(t, calls)
	props, ok := calls[len(calls)-1].Decode()["properties"].(map[string]any)
	require.True(t, ok)
	return props
}

func blockText(block any) string {
	para := block.(map[string]any)["paragraph"].(map[string]any)
	var b strings.Builder
	for _, span := range para["rich_text"].([]any) {
		b.WriteString(span.(map[string]any)["text"].(map[string]any)["content"].(string))
	}
	return b.String()
}

func TestCreateChunksLongBody(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPost, "/pages",
		notiontest.NewPage("new1").Title("Name", "Add export").Status("Status", "Open").Build())

	body := strings.Repeat("abcdefghij", 450)
	ticket, err := h.engine.Create(context.Background(), CreateInput{
		Title:    "Add export",
		Area:     types.AreaBackend,
		Body:     body,
		Priority: types.PriorityP1,
		Type:     "Feature",
		Assignee: "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "new1", ticket.ID)

	calls := h.transport.CallsTo(http.MethodPost, "/pages")
	require.Len(t, calls, 1)
	req := calls[0].Decode()

	children := req["children"].([]any)
	require.Len(t, children, 3)
	var rebuilt strings.Builder
	for _, c := range children {
		rebuilt.WriteString(blockText(c))
	}
	assert.Equal(t, body, rebuilt.String())

	props := req["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"status": map[string]any{"name": "Open"}}, props["Status"])
	assert.Equal(t, map[string]any{"multi_select": []any{map[string]any{"name": "web"}}}, props["App"])
	assert.Equal(t, map[string]any{"multi_select": []any{map[string]any{"name": "Backend"}}}, props["Area"])
	assert.Equal(t, map[string]any{"select": map[string]any{"name": "P1"}}, props["Priority"])
	assert.Equal(t, map[string]any{"people": []any{map[string]any{"id": "user-alice"}}}, props["Assignee"])

	entries := history(t, h)
	require.Len(t, entries, 1)
	assert.Equal(t, types.HistoryEntry{
		TicketID:  "new1",
		Title:     "Add export",
		Action:    types.ActionCreated,
		Timestamp: entries[0].Timestamp,
	}, entries[0])
}

func TestCreateWithoutBodySendsNoChildren(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPost, "/pages", notiontest.NewPage("new2").Build())

	ticket, err := h.engine.Create(context.Background(), CreateInput{Title: "Tiny", Area: types.AreaDocs})
	require.NoError(t, err)
	assert.Equal(t, "Tiny", ticket.Title, "falls back to the requested title")

	req := h.transport.CallsTo(http.MethodPost, "/pages")[0].Decode()
	assert.NotContains(t, req, "children")
}

func TestCreateFailsFast(t *testing.T) {
	cases := []struct {
		name      string
		configure func(*Config)
		input     CreateInput
		wantErr   error
	}{
		{
			name:      "no scope",
			configure: func(c *Config) { c.TargetApp = "" },
			input:     CreateInput{Title: "x", Area: types.AreaDocs},
			wantErr:   ErrNoScope,
		},
		{
			name:    "unknown assignee",
			input:   CreateInput{Title: "x", Area: types.AreaDocs, Assignee: "mallory"},
			wantErr: ErrUnknownAssignee,
		},
		{
			name:  "bad area",
			input: CreateInput{Title: "x", Area: "Ops"},
		},
		{
			name:  "bad priority",
			input: CreateInput{Title: "x", Area: types.AreaDocs, Priority: "urgent"},
		},
		{
			name:  "empty title",
			input: CreateInput{Title: "  ", Area: types.AreaDocs},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var configure []func(*Config)
			if tc.configure != nil {
				configure = append(configure, tc.configure)
			}
			h := newHarness(t, configure...)

			_, err := h.engine.Create(context.Background(), tc.input)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			assert.Empty(t, h.transport.Calls(), "nothing sent")
		})
	}
}

func TestSetStatusDoneStampsResolution(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1",
		notiontest.NewPage("t1").Title("Name", "Login bug").Status("Status", "Done").Build())

	want := types.Timestamp(h.clock.Now())
	ticket, err := h.engine.SetStatus(context.Background(), "t1", types.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDone, ticket.Status)

	props := patchProps(t, h, "t1")
	assert.Equal(t, map[string]any{"status": map[string]any{"name": "Done"}}, props["Status"])
	assert.Equal(t, map[string]any{"date": map[string]any{"start": want}}, props["Resolved at"])

	entries := history(t, h)
	require.Len(t, entries, 1)
	assert.Equal(t, types.ActionDone, entries[0].Action)
	assert.Equal(t, "Login bug", entries[0].Title)
	assert.Equal(t, want, entries[0].Timestamp)
}

func TestSetStatusReviewAIFixStampsResolution(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1", notiontest.NewPage("t1").Build())

	_, err := h.engine.SetStatus(context.Background(), "t1", types.StatusReviewAIFix)
	require.NoError(t, err)
	assert.Contains(t, patchProps(t, h, "t1"), "Resolved at")
	assert.Equal(t, types.ActionStatusChange, history(t, h)[0].Action)
}

func TestSetStatusOpenLeavesResolution(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1", notiontest.NewPage("t1").Build())

	_, err := h.engine.SetStatus(context.Background(), "t1", types.StatusOpen)
	require.NoError(t, err)

	props := patchProps(t, h, "t1")
	assert.NotContains(t, props, "Resolved at")
	assert.Len(t, props, 1)
	assert.Equal(t, types.ActionStatusChange, history(t, h)[0].Action)
}

func TestSetStatusInProgressRecordsStarted(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1", notiontest.NewPage("t1").Build())

	_, err := h.engine.SetStatus(context.Background(), "t1", types.StatusInProgress)
	require.NoError(t, err)
	entries := history(t, h)
	require.Len(t, entries, 1)
	assert.Equal(t, types.ActionStarted, entries[0].Action)
	assert.Equal(t, types.UntitledTitle, entries[0].Title)
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.SetStatus(context.Background(), "t1", "Closed")
	require.Error(t, err)
	assert.Empty(t, h.transport.Calls())
}

func TestSetStatusRemoteFailure(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1",
		notiontest.ErrorObject(400, "validation_error", "Status is not a property"))

	_, err := h.engine.SetStatus(context.Background(), "t1", types.StatusDone)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status update failed")
	assert.Empty(t, history(t, h), "failed writes leave no history")
}

func TestAnnotations(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1", notiontest.NewPage("t1").Build())
	ctx := context.Background()

	_, err := h.engine.SetBranch(ctx, "t1", "ticket/login-bug")
	require.NoError(t, err)
	assert.Equal(t, "ticket/login-bug", firstSpan(patchProps(t, h, "t1")["Branch"]))

	_, err = h.engine.SetCommit(ctx, "t1", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", firstSpan(patchProps(t, h, "t1")["Commit"]))

	_, err = h.engine.SetFeature(ctx, "t1", "Exports")
	require.NoError(t, err)
	assert.Equal(t, "Exports", firstSpan(patchProps(t, h, "t1")["Feature"]))

	assert.Empty(t, history(t, h))
}

func firstSpan(prop any) string {
	spans := prop.(map[string]any)["rich_text"].([]any)
	return spans[0].(map[string]any)["text"].(map[string]any)["content"].(string)
}

func TestSetDependencies(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1", notiontest.NewPage("t1").Build())
	ctx := context.Background()

	blockedBy := []string{"t2", "t3"}
	_, err := h.engine.SetDependencies(ctx, "t1", &blockedBy, nil)
	require.NoError(t, err)
	props := patchProps(t, h, "t1")
	assert.Equal(t, map[string]any{"relation": []any{
		map[string]any{"id": "t2"},
		map[string]any{"id": "t3"},
	}}, props["Blocked by"])
	assert.NotContains(t, props, "Blocks", "omitted relation is untouched")

	cleared := []string{}
	_, err = h.engine.SetDependencies(ctx, "t1", nil, &cleared)
	require.NoError(t, err)
	props = patchProps(t, h, "t1")
	assert.Equal(t, map[string]any{"relation": []any{}}, props["Blocks"])
	assert.NotContains(t, props, "Blocked by")

	before := len(h.transport.Calls())
	_, err = h.engine.SetDependencies(ctx, "t1", nil, nil)
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Len(t, h.transport.Calls(), before)
}

func TestSetAssignee(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1", notiontest.NewPage("t1").Build())
	ctx := context.Background()

	_, err := h.engine.SetAssignee(ctx, "t1", "ALICE")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"people": []any{map[string]any{"id": "user-alice"}}},
		patchProps(t, h, "t1")["Assignee"])

	before := len(h.transport.Calls())
	_, err = h.engine.SetAssignee(ctx, "t1", "mallory")
	assert.ErrorIs(t, err, ErrUnknownAssignee)
	assert.Len(t, h.transport.Calls(), before)
}

func TestArchive(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1",
		notiontest.NewPage("t1").Title("Name", "Stale").Build())

	require.NoError(t, h.engine.Archive(context.Background(), "t1"))

	calls := h.transport.CallsTo(http.MethodPatch, "/pages/t1")
	require.Len(t, calls, 1)
	assert.Equal(t, true, calls[0].Decode()["archived"])

	entries := history(t, h)
	require.Len(t, entries, 1)
	assert.Equal(t, types.ActionArchived, entries[0].Action)
	assert.Equal(t, "Stale", entries[0].Title)
}

func TestMutationsPauseAndRefresh(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1", notiontest.NewPage("t1").Build())
	h.transport.Respond(http.MethodPost, queryPath, notiontest.List([]any{
		ticketPage("t1", "Login bug", "Open", "P1", "web"),
	}, ""))
	sleepsBefore := len(h.clock.Sleeps())
	queriesBefore := len(h.transport.CallsTo(http.MethodPost, queryPath))

	_, err := h.engine.SetBranch(context.Background(), "t1", "b")
	require.NoError(t, err)

	sleeps := h.clock.Sleeps()[sleepsBefore:]
	assert.Equal(t, []time.Duration{notion.RateLimitDelay}, sleeps)
	assert.Len(t, h.transport.CallsTo(http.MethodPost, queryPath), queriesBefore+1)

	st, err := h.store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, queueIDs(st))
}

func TestHistoryWithoutSnapshotIsSkipped(t *testing.T) {
	h := newHarness(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1", notiontest.NewPage("t1").Build())

	_, err := h.engine.SetStatus(context.Background(), "t1", types.StatusDone)
	require.NoError(t, err)
	assert.Empty(t, history(t, h), "refresh creates the snapshot after the entry was dropped")

	st, err := h.store.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, st.LastSynced)
}

func TestCreateLongBodyAppendsRemainder(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPost, "/pages", notiontest.NewPage("big").Title("Name", "Big").Build())
	h.transport.Respond(http.MethodPatch, "/blocks/big/children", notiontest.List(nil, ""))

	_, err := h.engine.Create(context.Background(), CreateInput{
		Title: "Big",
		Area:  types.AreaDocs,
		Body:  strings.Repeat("y", notion.MaxTextLength*(notion.MaxChildren+5)),
	})
	require.NoError(t, err)

	appends := h.transport.CallsTo(http.MethodPatch, "/blocks/big/children")
	require.Len(t, appends, 1)
	assert.Len(t, appends[0].Decode()["children"], 5)
	require.Len(t, history(t, h), 1)
}

func TestCreatePartialBodyStillRecorded(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPost, "/pages", notiontest.NewPage("big").Title("Name", "Big").Build())
	h.transport.Respond(http.MethodPatch, "/blocks/big/children",
		notiontest.ErrorObject(400, "validation_error", "nope"))

	ticket, err := h.engine.Create(context.Background(), CreateInput{
		Title: "Big",
		Area:  types.AreaDocs,
		Body:  strings.Repeat("y", notion.MaxTextLength*(notion.MaxChildren+1)),
	})
	require.Error(t, err)
	assert.Equal(t, "big", ticket.ID)

	entries := history(t, h)
	require.Len(t, entries, 1)
	assert.Equal(t, types.ActionCreated, entries[0].Action)
}

func TestSetAssigneeTrimsName(t *testing.T) {
	h := primed(t)
	h.transport.Respond(http.MethodPatch, "/pages/t1", notiontest.NewPage("t1").Build())

	_, err := h.engine.SetAssignee(context.Background(), "t1", "  Alice ")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"people": []any{map[string]any{"id": "user-alice"}}},
		patchProps(t, h, "t1")["Assignee"])
}

func TestSetAssigneeWithoutResolver(t *testing.T) {
	h := primed(t, func(c *Config) { c.Assignees = nil })

	_, err := h.engine.SetAssignee(context.Background(), "t1", "alice")
	assert.ErrorIs(t, err, ErrUnknownAssignee)
	assert.Empty(t, h.transport.CallsTo(http.MethodPatch, "/pages/t1"))
}
