package repository

import (
	"context"
	"fmt"
	"iter"

	"github.com/forgo/hearth/api/internal/database"
	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
)

// Groups live in the household table; "group" is a SurrealQL keyword.
const groupSelect = `SELECT *, (SELECT VALUE id FROM user WHERE household = $parent.id) AS member_ids`

// GroupRepository handles group data access. Membership is the group
// link on each user record.
type GroupRepository struct {
	db       database.Database
	pageSize int
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db database.Database, pageSize int) *GroupRepository {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &GroupRepository{db: db, pageSize: pageSize}
}

// Create creates a group and makes the founder its first member in one
// transaction
func (r *GroupRepository) Create(ctx context.Context, group *model.Group, founderID string) error {
	query := `
		BEGIN TRANSACTION;
		LET $created = (CREATE ONLY household CONTENT {
			name: $name,
			bio: $bio,
			location: IF $location IS NOT NULL THEN $location ELSE NONE END,
			has_house: false,
			created_on: time::now(),
			updated_on: time::now()
		});
		UPDATE type::record($founder) SET household = $created.id, updated_on = time::now();
		RETURN $created;
		COMMIT TRANSACTION;
	`
	vars := map[string]any{
		"name":     group.Name,
		"bio":      group.Bio,
		"location": geoVar(group.Location),
		"founder":  founderID,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	created, err := lastRecord(results)
	if err != nil {
		return err
	}

	group.ID = recordID(created["id"])
	group.MemberIDs = []string{founderID}
	group.CreatedOn = getTime(created, "created_on")
	group.UpdatedOn = getTime(created, "updated_on")
	return nil
}

// GetByID retrieves a group with its member ids
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*model.Group, error) {
	if !inTable(id, "household") {
		return nil, nil
	}
	return queryOne(func() (any, error) {
		return r.db.QueryOne(ctx, groupSelect+` FROM type::record($id)`, map[string]any{"id": id})
	}, parseGroup)
}

// Update writes name, bio and location
func (r *GroupRepository) Update(ctx context.Context, group *model.Group) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			bio = $bio,
			location = IF $location IS NOT NULL THEN $location ELSE NONE END,
			updated_on = time::now()
	`
	vars := map[string]any{
		"id":       group.ID,
		"name":     group.Name,
		"bio":      group.Bio,
		"location": geoVar(group.Location),
	}
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a group, releasing its members, unlinking its house and
// dropping its relationships and chat history
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	return WithTransaction(ctx, r.db, func(tx database.Transaction) error {
		vars := map[string]any{"id": id}
		for _, stmt := range []string{
			`UPDATE user SET household = NONE, updated_on = time::now() WHERE household = type::record($id)`,
			`UPDATE house SET household = NONE, updated_on = time::now() WHERE household = type::record($id)`,
			`DELETE relationship WHERE household = type::record($id)`,
			`DELETE chat_message WHERE household = type::record($id)`,
			`DELETE type::record($id)`,
		} {
			if err := tx.Execute(ctx, stmt, vars); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddMember links a user to the group
func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	query := `UPDATE type::record($user) SET household = type::record($group), updated_on = time::now()`
	return r.db.Execute(ctx, query, map[string]any{"user": userID, "group": groupID})
}

// RemoveMember unlinks a user from the group
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	query := `UPDATE type::record($user) SET household = NONE, updated_on = time::now() WHERE household = type::record($group)`
	return r.db.Execute(ctx, query, map[string]any{"user": userID, "group": groupID})
}

// Stream pages through groups matching the filter
func (r *GroupRepository) Stream(ctx context.Context, filter service.GroupFilter) iter.Seq2[*model.Group, error] {
	query := groupSelect + ` FROM household`
	vars := map[string]any{}
	where := boxClause(filter.Box, vars)
	if filter.HasHouse != nil {
		where = append(where, "has_house = $has_house")
		vars["has_house"] = *filter.HasHouse
	}

	return stream(ctx, r.db, r.pageSize, query, where, vars, parseGroup)
}

func parseGroup(data map[string]any) *model.Group {
	return &model.Group{
		ID:        recordID(data["id"]),
		Name:      getString(data, "name"),
		Bio:       getString(data, "bio"),
		HouseID:   getRecordPtr(data, "house"),
		HasHouse:  getBool(data, "has_house"),
		Location:  getGeoPoint(data, "location"),
		MemberIDs: getRecordSlice(data, "member_ids"),
		CreatedOn: getTime(data, "created_on"),
		UpdatedOn: getTime(data, "updated_on"),
	}
}
