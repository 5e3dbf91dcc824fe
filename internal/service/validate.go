package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/forgo/hearth/api/internal/model"
)

// AssetChecker reports whether an asset hash has been uploaded
type AssetChecker interface {
	Exists(ctx context.Context, hash string) (bool, error)
}

// isValidColor accepts #rrggbb in either case
func isValidColor(color string) bool {
	if len(color) != 7 || color[0] != '#' {
		return false
	}
	for _, c := range strings.ToLower(color[1:]) {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > model.MaxEmailLength {
		return false
	}
	at := strings.Index(email, "@")
	if at < 1 {
		return false
	}
	dot := strings.LastIndex(email, ".")
	return dot >= at+2 && dot < len(email)-1
}

func validatePassword(password string) error {
	switch {
	case password == "":
		return ErrPasswordRequired
	case len(password) < model.MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > model.MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

func validateList(field string, items []string, max int) error {
	if len(items) > max {
		return fmt.Errorf("%w: %s allows at most %d", ErrTooManyItems, field, max)
	}
	for _, item := range items {
		if strings.TrimSpace(item) == "" || utf8.RuneCountInString(item) > model.MaxNameLength {
			return fmt.Errorf("%w: %s entries must be 1-%d characters", ErrTooManyItems, field, model.MaxNameLength)
		}
	}
	return nil
}

// assertAsset fails with ErrInvalidAssetHash when the hash is unknown
func assertAsset(ctx context.Context, assets AssetChecker, hash string) error {
	ok, err := assets.Exists(ctx, hash)
	if err != nil {
		return fmt.Errorf("check asset: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidAssetHash, hash)
	}
	return nil
}

// normalizeList trims entries and keeps the slice non-nil
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.TrimSpace(item))
	}
	return out
}
