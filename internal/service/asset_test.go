package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAsset(t *testing.T) {
	t.Parallel()
	sum := sha256.Sum256([]byte("hearth"))

	assert.Equal(t, base64.URLEncoding.EncodeToString(sum[:]), HashAsset([]byte("hearth")))
	assert.NotContains(t, HashAsset([]byte{0xfb, 0xff}), "+")
}

func TestAssetUpload(t *testing.T) {
	t.Parallel()
	m := newMemStore()
	svc := NewAssetService(AssetServiceConfig{AssetRepo: memAssets{m}, MaxBytes: 8})
	ctx := context.Background()

	a, err := svc.Upload(ctx, []byte("png!"), "")
	require.NoError(t, err)
	assert.Equal(t, HashAsset([]byte("png!")), a.Hash)
	assert.Equal(t, "application/octet-stream", a.ContentType)
	assert.Equal(t, 4, a.Size)

	again, err := svc.Upload(ctx, []byte("png!"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, a, again, "re-upload returns the stored asset")

	got, err := svc.Get(ctx, a.Hash)
	require.NoError(t, err)
	assert.Equal(t, []byte("png!"), got.Data)

	_, err = svc.Upload(ctx, nil, "")
	assert.ErrorIs(t, err, ErrEmptyAsset)

	_, err = svc.Upload(ctx, []byte("123456789"), "")
	assert.ErrorIs(t, err, ErrAssetTooLarge)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}
