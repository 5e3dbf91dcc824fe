package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/forgo/hearth/api/internal/model"
)

// DefaultMaxAssetBytes caps uploads when no limit is configured
const DefaultMaxAssetBytes = 10 << 20

// AssetRepository defines the interface for asset storage
type AssetRepository interface {
	AssetChecker
	Get(ctx context.Context, hash string) (*model.Asset, error)
	Put(ctx context.Context, asset *model.Asset) error
}

// AssetService stores content-addressed uploads
type AssetService struct {
	assetRepo AssetRepository
	maxBytes  int
}

// AssetServiceConfig holds configuration for the asset service
type AssetServiceConfig struct {
	AssetRepo AssetRepository
	MaxBytes  int
}

// NewAssetService creates a new asset service
func NewAssetService(cfg AssetServiceConfig) *AssetService {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxAssetBytes
	}
	return &AssetService{assetRepo: cfg.AssetRepo, maxBytes: cfg.MaxBytes}
}

// MaxBytes is the upload size limit
func (s *AssetService) MaxBytes() int {
	return s.maxBytes
}

// HashAsset returns the URL-safe base64 SHA-256 of data
func HashAsset(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.URLEncoding.EncodeToString(sum[:])
}

// Upload stores data under its hash. Uploading the same bytes twice is a
// no-op that returns the existing asset.
func (s *AssetService) Upload(ctx context.Context, data []byte, contentType string) (*model.Asset, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAsset
	}
	if len(data) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrAssetTooLarge, len(data), s.maxBytes)
	}

	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	hash := HashAsset(data)
	existing, err := s.assetRepo.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	asset := &model.Asset{Hash: hash, Data: data, ContentType: contentType, Size: len(data)}
	if err := s.assetRepo.Put(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// Get returns a stored asset
func (s *AssetService) Get(ctx context.Context, hash string) (*model.Asset, error) {
	asset, err := s.assetRepo.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, ErrAssetNotFound
	}
	return asset, nil
}
