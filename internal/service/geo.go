package service

import (
	"container/heap"
	"context"
	"iter"
	"math"

	"github.com/forgo/hearth/api/internal/model"
)

// DistanceUnit is the unit a search radius and its results are expressed in
type DistanceUnit string

const (
	UnitMiles      DistanceUnit = "mi"
	UnitKilometers DistanceUnit = "km"
)

// Earth radii
const (
	EarthRadiusKm    = 6371.0
	EarthRadiusMiles = 3958.8
)

// Search defaults
const (
	DefaultSearchLimit = 100
	DefaultSearchUnit  = UnitMiles
)

// ParseDistanceUnit accepts the unit spellings clients send
func ParseDistanceUnit(s string) (DistanceUnit, error) {
	switch s {
	case "", "mi", "mile", "miles":
		return UnitMiles, nil
	case "km", "kilometer", "kilometers":
		return UnitKilometers, nil
	default:
		return "", ErrInvalidUnit
	}
}

func (u DistanceUnit) radius() (float64, error) {
	switch u {
	case UnitMiles:
		return EarthRadiusMiles, nil
	case UnitKilometers:
		return EarthRadiusKm, nil
	default:
		return 0, ErrInvalidUnit
	}
}

// HaversineDistance returns the great-circle distance between two points.
// An unknown unit yields NaN.
func HaversineDistance(a, b model.GeoPoint, unit DistanceUnit) float64 {
	r, err := unit.radius()
	if err != nil {
		return math.NaN()
	}
	return haversine(a, b, r)
}

func haversine(a, b model.GeoPoint, earthRadius float64) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

// BoundingBox is a coarse prefilter around a search origin
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside the box
func (b BoundingBox) Contains(p model.GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// BoundingBoxFor returns a box that contains every point within radius of
// origin. ok is false when no simple box exists (the circle reaches a pole
// or crosses the antimeridian) and callers must scan without a prefilter.
func BoundingBoxFor(origin model.GeoPoint, radius float64, unit DistanceUnit) (BoundingBox, bool) {
	r, err := unit.radius()
	if err != nil || radius <= 0 {
		return BoundingBox{}, false
	}

	// Angular radius, widened slightly so rounding never drops an edge point.
	delta := (radius / r) * 180 / math.Pi * 1.01
	minLat, maxLat := origin.Lat-delta, origin.Lat+delta
	if minLat <= -90 || maxLat >= 90 {
		return BoundingBox{}, false
	}

	// Longitude span grows toward the poles; use the widest latitude.
	widest := math.Max(math.Abs(minLat), math.Abs(maxLat)) * math.Pi / 180
	lonDelta := delta / math.Cos(widest)
	minLon, maxLon := origin.Lon-lonDelta, origin.Lon+lonDelta
	if minLon < -180 || maxLon > 180 {
		return BoundingBox{}, false
	}

	return BoundingBox{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}, true
}

// NearestQuery parameterizes a top-k proximity search
type NearestQuery struct {
	Origin model.GeoPoint
	Radius float64
	Unit   DistanceUnit
	Limit  int
}

// Candidate is one searchable item with its location. Key must be unique
// within a stream; it orders equidistant results.
type Candidate[T any] struct {
	Key   string
	Item  T
	Point model.GeoPoint
}

// Ranked is a search hit with its distance from the origin
type Ranked[T any] struct {
	Key      string
	Item     T
	Distance float64
}

// Nearest returns at most q.Limit candidates within q.Radius of q.Origin,
// nearest first. The stream is consumed once and only q.Limit entries are
// held at any time. The radius is inclusive and ties are ordered by Key.
func Nearest[T any](ctx context.Context, q NearestQuery, candidates iter.Seq2[Candidate[T], error]) ([]Ranked[T], error) {
	earthRadius, err := q.Unit.radius()
	if err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		return []Ranked[T]{}, nil
	}

	h := &rankHeap[T]{}
	for c, err := range candidates {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		d := haversine(q.Origin, c.Point, earthRadius)
		if d > q.Radius {
			continue
		}
		r := Ranked[T]{Key: c.Key, Item: c.Item, Distance: d}
		if h.Len() < q.Limit {
			heap.Push(h, r)
			continue
		}
		// Top of the heap is the current worst.
		if less(r, (*h)[0]) {
			(*h)[0] = r
			heap.Fix(h, 0)
		}
	}

	out := make([]Ranked[T], h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Ranked[T])
	}
	return out, nil
}

func less[T any](a, b Ranked[T]) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Key < b.Key
}

// rankHeap is a max-heap on (distance, key)
type rankHeap[T any] []Ranked[T]

func (h rankHeap[T]) Len() int           { return len(h) }
func (h rankHeap[T]) Less(i, j int) bool { return less(h[j], h[i]) }
func (h rankHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *rankHeap[T]) Push(x any) { *h = append(*h, x.(Ranked[T])) }

func (h *rankHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
