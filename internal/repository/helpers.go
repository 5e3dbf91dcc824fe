package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/forgo/hearth/api/internal/database"
	"github.com/forgo/hearth/api/internal/model"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// DefaultPageSize is the number of rows fetched per round trip when
// streaming search candidates
const DefaultPageSize = 500

// inTable reports whether id is a record id of the table
func inTable(id, table string) bool {
	return strings.HasPrefix(id, table+":") && len(id) > len(table)+1
}

// recordID converts a SurrealDB record id (which may be a complex object) to a string
func recordID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case models.RecordID:
		return fmt.Sprintf("%s:%v", v.Table, v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%s:%v", v.Table, v.ID)
		}
		return ""
	case map[string]any:
		// {"tb": "user", "id": {"String": "abc"}} and similar
		tb := firstString(v, "tb", "TB", "Table")
		var key string
		if raw, ok := v["id"]; ok {
			key = idValue(raw)
		} else if raw, ok := v["ID"]; ok {
			key = idValue(raw)
		}
		if tb != "" && key != "" {
			return tb + ":" + key
		}
		return key
	}
	return fmt.Sprintf("%v", id)
}

func idValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if m, ok := v.(map[string]any); ok {
		if s := firstString(m, "String", "string"); s != "" {
			return s
		}
	}
	return fmt.Sprintf("%v", v)
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			return s
		}
	}
	return ""
}

// asRecord unwraps a QueryOne result into a record map
func asRecord(result any) (map[string]any, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}
	if arr, ok := result.([]any); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}
	data, ok := result.(map[string]any)
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return data, nil
}

// lastRecord returns the record produced by the last statement that
// produced one. Multi-statement transactions end with the statement whose
// value the caller wants.
func lastRecord(results []any) (map[string]any, error) {
	for i := len(results) - 1; i >= 0; i-- {
		if recs := database.Records(results, i); len(recs) > 0 {
			return recs[0], nil
		}
	}
	return nil, errors.New("no record returned")
}

// queryOne runs a single-record query, mapping a missing record to nil
func queryOne[T any](run func() (any, error), parse func(map[string]any) T) (T, error) {
	var zero T
	result, err := run()
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return zero, nil
		}
		return zero, err
	}
	data, err := asRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return zero, nil
		}
		return zero, err
	}
	return parse(data), nil
}

// getString extracts a string value from a map
func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getStringPtr extracts an optional string value from a map
func getStringPtr(m map[string]any, key string) *string {
	if v, ok := m[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

// getRecordPtr extracts an optional record link as an id string
func getRecordPtr(m map[string]any, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	if id := recordID(v); id != "" {
		return &id
	}
	return nil
}

// getInt64 converts the numeric types the CBOR decoder may produce
func getInt64(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case uint64:
		return int64(v)
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint32:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	}
	return 0
}

// getFloat extracts a float value from a map
func getFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// getBool extracts a bool value from a map
func getBool(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

// getTime extracts a datetime from a map
func getTime(m map[string]any, key string) time.Time {
	switch t := m[key].(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// getStringSlice extracts a string slice from a map, never nil
func getStringSlice(m map[string]any, key string) []string {
	v, _ := m[key].([]any)
	result := make([]string, 0, len(v))
	for _, item := range v {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// getRecordSlice extracts record links as sorted id strings
func getRecordSlice(m map[string]any, key string) []string {
	v, _ := m[key].([]any)
	result := make([]string, 0, len(v))
	for _, item := range v {
		if id := recordID(item); id != "" {
			result = append(result, id)
		}
	}
	slices.Sort(result)
	return result
}

// getGeoPoint extracts a {lat, lon} object
func getGeoPoint(m map[string]any, key string) *model.GeoPoint {
	obj, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	return &model.GeoPoint{Lat: getFloat(obj, "lat"), Lon: getFloat(obj, "lon")}
}

// getBytes extracts binary data, accepting base64 text from older rows
func getBytes(m map[string]any, key string) []byte {
	switch v := m[key].(type) {
	case []byte:
		return v
	case string:
		if b, err := base64.StdEncoding.DecodeString(v); err == nil {
			return b
		}
	}
	return nil
}

// geoVar converts a point to a query variable, NONE when absent
func geoVar(p *model.GeoPoint) any {
	if p == nil {
		return nil
	}
	return map[string]any{"lat": p.Lat, "lon": p.Lon}
}

// ptrToNone converts a string pointer to a value or nil. Queries pair it
// with IF $x IS NOT NULL THEN $x ELSE NONE END.
func ptrToNone(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// WithTransaction executes a function within a transaction context.
// If the function returns an error, the transaction is rolled back.
func WithTransaction(ctx context.Context, db database.Database, fn func(tx database.Transaction) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
