package model

// EngagementSummary is the read-side rollup for a target, recomputed from
// the underlying row sets. The cache layer stores and invalidates whole
// summaries; it never patches individual fields.
type EngagementSummary struct {
	TargetKind    Kind  `json:"target_kind"`
	TargetID      int64 `json:"target_id"`
	ReactionCount int   `json:"reaction_count"`
	CommentCount  int   `json:"comment_count"`
	ShareCount    int   `json:"share_count"`
}
