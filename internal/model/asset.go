package model

import "time"

// Asset is arbitrary binary data identified by the URL-safe base64
// SHA-256 of its bytes.
type Asset struct {
	Hash        string    `json:"hash"`
	Data        []byte    `json:"-"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	CreatedOn   time.Time `json:"created_on"`
}
