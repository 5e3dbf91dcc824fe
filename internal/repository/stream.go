package repository

import (
	"context"
	"iter"
	"maps"
	"strings"

	"github.com/forgo/hearth/api/internal/database"
	"github.com/forgo/hearth/api/internal/service"
)

// stream pages through a query with LIMIT/START, yielding parsed rows.
// Rows are ordered by id so pages do not overlap.
func stream[T any](ctx context.Context, db database.Database, pageSize int, base string, where []string, vars map[string]any, parse func(map[string]any) T) iter.Seq2[T, error] {
	query := base
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id LIMIT $limit START $offset"

	return func(yield func(T, error) bool) {
		var zero T
		for offset := 0; ; offset += pageSize {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			page := maps.Clone(vars)
			page["limit"] = pageSize
			page["offset"] = offset
			results, err := db.Query(ctx, query, page)
			if err != nil {
				yield(zero, err)
				return
			}

			rows := database.Records(results, 0)
			for _, row := range rows {
				if !yield(parse(row), nil) {
					return
				}
			}
			if len(rows) < pageSize {
				return
			}
		}
	}
}

// boxClause restricts location to the bounding box
func boxClause(box *service.BoundingBox, vars map[string]any) []string {
	if box == nil {
		return nil
	}
	vars["min_lat"] = box.MinLat
	vars["max_lat"] = box.MaxLat
	vars["min_lon"] = box.MinLon
	vars["max_lon"] = box.MaxLon
	return []string{
		"location.lat >= $min_lat",
		"location.lat <= $max_lat",
		"location.lon >= $min_lon",
		"location.lon <= $max_lon",
	}
}
