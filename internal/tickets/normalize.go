package tickets

import (
	"slices"

	"github.com/daviddao/notionqueue/internal/notion"
	"github.com/daviddao/notionqueue/internal/types"
)

// Normalize builds the canonical ticket for page. actingID is the
// identity whose assignment makes a ticket eligible; empty means every
// ticket is eligible.
func Normalize(page *notion.Page, actingID string) types.Ticket {
	title := notion.PlainText(page.Prop(PropTitle))
	if title == "" {
		title = types.UntitledTitle
	}

	assignees := notion.PeopleIDs(page.Prop(PropAssignee))

	return types.Ticket{
		ID:             page.ID,
		Title:          title,
		Summary:        notion.PlainText(page.Prop(PropSummary)),
		Status:         normalizeStatus(notion.Choice(page.Prop(PropStatus))),
		Area:           first(notion.MultiChoice(page.Prop(PropArea))),
		App:            first(notion.MultiChoice(page.Prop(PropApp))),
		Type:           notion.Choice(page.Prop(PropType)),
		Priority:       notion.Choice(page.Prop(PropPriority)),
		BlockedBy:      orEmpty(notion.RelationIDs(page.Prop(PropBlockedBy))),
		Blocks:         orEmpty(notion.RelationIDs(page.Prop(PropBlocks))),
		Branch:         notion.PlainText(page.Prop(PropBranch)),
		Commit:         notion.PlainText(page.Prop(PropCommit)),
		Feature:        notion.PlainText(page.Prop(PropFeature)),
		Link:           notion.URL(page.Prop(PropLink)),
		ResolvedAt:     notion.Date(page.Prop(PropResolvedAt)),
		Assignees:      orEmpty(assignees),
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
		Eligible:       actingID == "" || slices.Contains(assignees, actingID),
	}
}

// NormalizeAll normalizes pages in order.
func NormalizeAll(pages []notion.Page, actingID string) []types.Ticket {
	out := make([]types.Ticket, 0, len(pages))
	for i := range pages {
		out = append(out, Normalize(&pages[i], actingID))
	}
	return out
}

// normalizeStatus maps unknown or missing statuses to Open.
func normalizeStatus(s string) string {
	if types.IsValidStatus(s) {
		return s
	}
	return types.StatusOpen
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
