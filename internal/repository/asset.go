package repository

import (
	"context"
	"errors"

	"github.com/forgo/hearth/api/internal/database"
	"github.com/forgo/hearth/api/internal/model"
)

// AssetRepository stores content-addressed blobs keyed by hash
type AssetRepository struct {
	db database.Database
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db database.Database) *AssetRepository {
	return &AssetRepository{db: db}
}

// Exists reports whether the hash has been uploaded
func (r *AssetRepository) Exists(ctx context.Context, hash string) (bool, error) {
	query := `SELECT hash FROM asset WHERE hash = $hash LIMIT 1`
	_, err := r.db.QueryOne(ctx, query, map[string]any{"hash": hash})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get returns the asset with its data, or nil
func (r *AssetRepository) Get(ctx context.Context, hash string) (*model.Asset, error) {
	query := `SELECT * FROM asset WHERE hash = $hash LIMIT 1`
	return queryOne(func() (any, error) {
		return r.db.QueryOne(ctx, query, map[string]any{"hash": hash})
	}, parseAsset)
}

// Put stores an asset. Storing a hash that already exists is a no-op.
func (r *AssetRepository) Put(ctx context.Context, asset *model.Asset) error {
	query := `
		CREATE asset CONTENT {
			hash: $hash,
			data: $data,
			content_type: $content_type,
			size: $size,
			created_on: time::now()
		}
	`
	vars := map[string]any{
		"hash":         asset.Hash,
		"data":         asset.Data,
		"content_type": asset.ContentType,
		"size":         asset.Size,
	}

	err := r.db.Execute(ctx, query, vars)
	if errors.Is(err, database.ErrDuplicate) {
		return nil
	}
	return err
}

func parseAsset(data map[string]any) *model.Asset {
	return &model.Asset{
		Hash:        getString(data, "hash"),
		Data:        getBytes(data, "data"),
		ContentType: getString(data, "content_type"),
		Size:        int(getInt64(data, "size")),
		CreatedOn:   getTime(data, "created_on"),
	}
}
