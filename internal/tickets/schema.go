// Package tickets maps remote pages to canonical tickets and turns a
// ticket set into the ordered work queue.
package tickets

// Property names on the ticket data source.
const (
	PropTitle      = "Name"
	PropSummary    = "Summary"
	PropStatus     = "Status"
	PropPriority   = "Priority"
	PropArea       = "Area"
	PropApp        = "App"
	PropType       = "Type"
	PropBlockedBy  = "Blocked by"
	PropBlocks     = "Blocks"
	PropAssignee   = "Assignee"
	PropBranch     = "Branch"
	PropCommit     = "Commit"
	PropFeature    = "Feature"
	PropLink       = "Link"
	PropResolvedAt = "Resolved at"
)
