package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/neighborly/engage/internal/model"
)

// kindTables maps each content kind to the table backing it. All tables
// share the (id, tenant_id, deleted_at) columns the visibility query
// relies on.
var kindTables = map[model.Kind]string{
	model.KindListing:      "listings",
	model.KindEvent:        "events",
	model.KindPost:         "posts",
	model.KindPoll:         "polls",
	model.KindVolunteering: "volunteering_opportunities",
	model.KindGoal:         "goals",
}

type contentOracle struct {
	db *sqlx.DB
}

func NewContentOracle(db *sqlx.DB) ContentOracle {
	return &contentOracle{db: db}
}

// Visible reports whether the target exists, is not deleted and belongs
// to the given tenant. Comments are resolved through the target they are
// attached to, so reacting to a comment runs the same tenancy check as
// reacting to the content itself.
func (o *contentOracle) Visible(ctx context.Context, ref model.Ref, tenantID int64) (bool, error) {
	if ref.Kind == model.KindComment {
		return o.commentVisible(ctx, ref.ID, tenantID)
	}

	table, ok := kindTables[ref.Kind]
	if !ok {
		return false, fmt.Errorf("%w: %q", model.ErrUnknownKind, ref.Kind)
	}

	query := fmt.Sprintf(
		`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL)`,
		table,
	)
	var exists bool
	if err := o.db.GetContext(ctx, &exists, query, ref.ID, tenantID); err != nil {
		return false, fmt.Errorf("check %s visibility: %w", ref.Kind, err)
	}
	return exists, nil
}

func (o *contentOracle) commentVisible(ctx context.Context, commentID, tenantID int64) (bool, error) {
	var parent struct {
		Kind model.Kind `db:"target_kind"`
		ID   int64      `db:"target_id"`
	}
	err := o.db.GetContext(ctx, &parent,
		`SELECT target_kind, target_id FROM comments WHERE id = $1`, commentID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolve comment target: %w", err)
	}
	return o.Visible(ctx, model.Ref{Kind: parent.Kind, ID: parent.ID}, tenantID)
}
