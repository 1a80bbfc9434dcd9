package tickets

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviddao/notionqueue/internal/notion"
	"github.com/daviddao/notionqueue/internal/notion/notiontest"
	"github.com/daviddao/notionqueue/internal/types"
)

func decodePage(t *testing.T, raw any) *notion.Page {
	t.Helper()
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	var page notion.Page
	require.NoError(t, json.Unmarshal(data, &page))
	return &page
}

func fullPage() map[string]any {
	return notiontest.NewPage("t1").
		Title(PropTitle, "Fix login redirect").
		RichText(PropSummary, "Users bounce back to /login").
		Status(PropStatus, types.StatusInReview).
		Select(PropPriority, types.PriorityP1).
		MultiSelect(PropArea, types.AreaFrontend, types.AreaDocs).
		MultiSelect(PropApp, "web").
		Select(PropType, "Bug").
		Relation(PropBlockedBy, "t0").
		Relation(PropBlocks, "t2", "t3").
		People(PropAssignee, "agent", "human").
		RichText(PropBranch, "ticket/fix-login").
		RichText(PropCommit, "abc123").
		RichText(PropFeature, "auth").
		URL(PropLink, "https://example.com/pr/7").
		Date(PropResolvedAt, "2026-02-01").
		Build()
}

func TestNormalizeFullPage(t *testing.T) {
	got := Normalize(decodePage(t, fullPage()), "agent")

	want := types.Ticket{
		ID:             "t1",
		Title:          "Fix login redirect",
		Summary:        "Users bounce back to /login",
		Status:         types.StatusInReview,
		Area:           types.AreaFrontend,
		App:            "web",
		Type:           "Bug",
		Priority:       types.PriorityP1,
		BlockedBy:      []string{"t0"},
		Blocks:         []string{"t2", "t3"},
		Branch:         "ticket/fix-login",
		Commit:         "abc123",
		Feature:        "auth",
		Link:           "https://example.com/pr/7",
		ResolvedAt:     "2026-02-01",
		Assignees:      []string{"agent", "human"},
		CreatedTime:    "2026-01-01T10:00:00.000Z",
		LastEditedTime: "2026-01-02T10:00:00.000Z",
		Eligible:       true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeEmptyPage(t *testing.T) {
	got := Normalize(decodePage(t, notiontest.NewPage("bare").Build()), "")

	assert.Equal(t, "bare", got.ID)
	assert.Equal(t, types.UntitledTitle, got.Title)
	assert.Equal(t, types.StatusOpen, got.Status)
	assert.Empty(t, got.Summary)
	assert.Empty(t, got.Area)
	assert.Empty(t, got.App)
	assert.Empty(t, got.Priority)
	assert.Empty(t, got.Branch)
	assert.Equal(t, []string{}, got.BlockedBy)
	assert.Equal(t, []string{}, got.Blocks)
	assert.Equal(t, []string{}, got.Assignees)
	assert.True(t, got.Eligible, "no acting identity means permissive")
}

func TestNormalizeMissingProperties(t *testing.T) {
	raw := map[string]any{"object": "page", "id": "np"}
	got := Normalize(decodePage(t, raw), "agent")

	assert.Equal(t, types.UntitledTitle, got.Title)
	assert.False(t, got.Eligible)
}

func TestNormalizeSchemaDrift(t *testing.T) {
	raw := notiontest.NewPage("drift").
		Select(PropArea, types.AreaBackend).
		Raw(PropPriority, map[string]any{"type": "select", "select": "P0"}).
		Raw(PropBlockedBy, map[string]any{"type": "rich_text", "rich_text": []any{}}).
		Raw(PropStatus, map[string]any{"type": "status", "status": map[string]any{"name": "Triage"}}).
		Raw(PropAssignee, "nonsense").
		Build()

	got := Normalize(decodePage(t, raw), "agent")

	assert.Equal(t, types.AreaBackend, got.Area, "single select read as multi choice")
	assert.Empty(t, got.Priority)
	assert.Equal(t, []string{}, got.BlockedBy)
	assert.Equal(t, types.StatusOpen, got.Status, "unknown status falls back to Open")
	assert.False(t, got.Eligible)
}

func TestNormalizeEligibility(t *testing.T) {
	page := decodePage(t, notiontest.NewPage("e").People(PropAssignee, "someone").Build())

	assert.False(t, Normalize(page, "agent").Eligible)
	assert.True(t, Normalize(page, "someone").Eligible)
	assert.True(t, Normalize(page, "").Eligible)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	page := decodePage(t, fullPage())

	first := Normalize(page, "agent")
	second := Normalize(page, "agent")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs:\n%s", diff)
	}
}
