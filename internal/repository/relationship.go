package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/hearth/api/internal/database"
	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
)

// RelationshipRepository handles (user, group) relationship rows. The
// pair is unique (index relationship_pair).
type RelationshipRepository struct {
	db database.Database
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db database.Database) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// Get returns the row for the pair, or nil when there is none
func (r *RelationshipRepository) Get(ctx context.Context, userID, groupID string) (*model.Relationship, error) {
	query := `
		SELECT * FROM relationship
		WHERE user = type::record($user) AND household = type::record($group)
		LIMIT 1
	`
	return queryOne(func() (any, error) {
		return r.db.QueryOne(ctx, query, map[string]any{"user": userID, "group": groupID})
	}, parseRelationship)
}

// Create inserts a new row
func (r *RelationshipRepository) Create(ctx context.Context, rel *model.Relationship) error {
	query := `
		CREATE relationship CONTENT {
			user: type::record($user),
			household: type::record($group),
			level: $level,
			open_dms: $open_dms,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]any{
		"user":     rel.UserID,
		"group":    rel.GroupID,
		"level":    int(rel.Level),
		"open_dms": rel.OpenDMs,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return fmt.Errorf("%w: %v", service.ErrRelationshipExists, err)
		}
		return err
	}
	if created, err := lastRecord(results); err == nil {
		rel.CreatedOn = getTime(created, "created_on")
		rel.UpdatedOn = getTime(created, "updated_on")
	}
	return nil
}

// Update writes level and open_dms
func (r *RelationshipRepository) Update(ctx context.Context, rel *model.Relationship) error {
	query := `
		UPDATE relationship SET
			level = $level,
			open_dms = $open_dms,
			updated_on = time::now()
		WHERE user = type::record($user) AND household = type::record($group)
	`
	vars := map[string]any{
		"user":     rel.UserID,
		"group":    rel.GroupID,
		"level":    int(rel.Level),
		"open_dms": rel.OpenDMs,
	}
	return r.db.Execute(ctx, query, vars)
}

// ListByGroup returns every row pointing at the group
func (r *RelationshipRepository) ListByGroup(ctx context.Context, groupID string) ([]*model.Relationship, error) {
	query := `SELECT * FROM relationship WHERE household = type::record($group) ORDER BY created_on`
	return r.list(ctx, query, map[string]any{"group": groupID})
}

// ListOpenByUser returns the user's rows with an open channel
func (r *RelationshipRepository) ListOpenByUser(ctx context.Context, userID string) ([]*model.Relationship, error) {
	query := `SELECT * FROM relationship WHERE user = type::record($user) AND open_dms = true ORDER BY created_on`
	return r.list(ctx, query, map[string]any{"user": userID})
}

func (r *RelationshipRepository) list(ctx context.Context, query string, vars map[string]any) ([]*model.Relationship, error) {
	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	rows := database.Records(results, 0)
	rels := make([]*model.Relationship, 0, len(rows))
	for _, row := range rows {
		rels = append(rels, parseRelationship(row))
	}
	return rels, nil
}

func parseRelationship(data map[string]any) *model.Relationship {
	return &model.Relationship{
		UserID:    recordID(data["user"]),
		GroupID:   recordID(data["household"]),
		Level:     model.AccessLevel(getInt64(data, "level")),
		OpenDMs:   getBool(data, "open_dms"),
		CreatedOn: getTime(data, "created_on"),
		UpdatedOn: getTime(data, "updated_on"),
	}
}
