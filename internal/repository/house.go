package repository

import (
	"context"
	"fmt"
	"iter"

	"github.com/forgo/hearth/api/internal/database"
	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
)

// HouseRepository handles house data access. Every write keeps the owning
// household's house link, has_house flag and location in step.
type HouseRepository struct {
	db       database.Database
	pageSize int
}

// NewHouseRepository creates a new house repository
func NewHouseRepository(db database.Database, pageSize int) *HouseRepository {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &HouseRepository{db: db, pageSize: pageSize}
}

// Create creates a house and links it to the group
func (r *HouseRepository) Create(ctx context.Context, house *model.House, groupID string) error {
	query := `
		BEGIN TRANSACTION;
		LET $created = (CREATE ONLY house CONTENT {
			location: $location,
			household: type::record($group),
			created_on: time::now(),
			updated_on: time::now()
		});
		UPDATE type::record($group) SET
			house = $created.id,
			has_house = true,
			location = $location,
			updated_on = time::now();
		RETURN $created;
		COMMIT TRANSACTION;
	`
	vars := map[string]any{
		"location": geoVar(&house.Location),
		"group":    groupID,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return fmt.Errorf("create house: %w", err)
	}
	created, err := lastRecord(results)
	if err != nil {
		return err
	}

	house.ID = recordID(created["id"])
	house.GroupID = &groupID
	house.CreatedOn = getTime(created, "created_on")
	house.UpdatedOn = getTime(created, "updated_on")
	return nil
}

// GetByID retrieves a house by ID
func (r *HouseRepository) GetByID(ctx context.Context, id string) (*model.House, error) {
	if !inTable(id, "house") {
		return nil, nil
	}
	return queryOne(func() (any, error) {
		return r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]any{"id": id})
	}, parseHouse)
}

// Update moves the house; the owning group moves with it
func (r *HouseRepository) Update(ctx context.Context, house *model.House) error {
	vars := map[string]any{"id": house.ID, "location": geoVar(&house.Location)}
	return database.NewAtomicBatch().
		Add(`UPDATE type::record($id) SET location = $location, updated_on = time::now()`, vars).
		Add(`UPDATE household SET location = $location, updated_on = time::now() WHERE house = type::record($id)`, vars).
		Execute(ctx, r.db)
}

// Delete unlinks the house from its group and removes it
func (r *HouseRepository) Delete(ctx context.Context, id string) error {
	vars := map[string]any{"id": id}
	return database.NewAtomicBatch().
		Add(`UPDATE household SET house = NONE, has_house = false, updated_on = time::now() WHERE house = type::record($id)`, vars).
		Add(`DELETE type::record($id)`, vars).
		Execute(ctx, r.db)
}

// Stream pages through houses, optionally inside a bounding box
func (r *HouseRepository) Stream(ctx context.Context, box *service.BoundingBox) iter.Seq2[*model.House, error] {
	vars := map[string]any{}
	where := boxClause(box, vars)
	return stream(ctx, r.db, r.pageSize, `SELECT * FROM house`, where, vars, parseHouse)
}

func parseHouse(data map[string]any) *model.House {
	h := &model.House{
		ID:        recordID(data["id"]),
		GroupID:   getRecordPtr(data, "household"),
		CreatedOn: getTime(data, "created_on"),
		UpdatedOn: getTime(data, "updated_on"),
	}
	if loc := getGeoPoint(data, "location"); loc != nil {
		h.Location = *loc
	}
	return h
}
