package model

import "time"

// House is a living space. Its location is roughly accurate to the
// nearest city.
type House struct {
	ID        string    `json:"id"`
	Location  GeoPoint  `json:"location"`
	GroupID   *string   `json:"group_id,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// HouseRequest creates or moves a house
type HouseRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
