package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/forgo/hearth/api/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost factor (10-14 recommended for production)
const bcryptCost = 12

// UserRepository defines the interface for user storage
type UserRepository interface {
	UserReader
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	ListByGroup(ctx context.Context, groupID string) ([]*model.User, error)
}

// TokenSigner issues access tokens
type TokenSigner interface {
	Sign(userID, email string) (string, error)
	GetExpiration() time.Duration
}

// AuthService handles registration and login
type AuthService struct {
	userRepo UserRepository
	assets   AssetChecker
	signer   TokenSigner
	cost     int
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	UserRepo   UserRepository
	AssetRepo  AssetChecker
	Signer     TokenSigner
	BcryptCost int // Default: 12
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcryptCost
	}
	return &AuthService{
		userRepo: cfg.UserRepo,
		assets:   cfg.AssetRepo,
		signer:   cfg.Signer,
		cost:     cfg.BcryptCost,
	}
}

// Register creates an account and returns an access token for it
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.TokenResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	preferred := strings.TrimSpace(req.PreferredName)
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = preferred
	}
	user := &model.User{
		Email:              email,
		Color:              strings.ToLower(req.Color),
		AvatarHash:         req.AvatarHash,
		Nickname:           nickname,
		PreferredName:      preferred,
		Bio:                strings.TrimSpace(req.Bio),
		Pronouns:           normalizeList(req.Pronouns),
		Genders:            normalizeList(req.Genders),
		SexualOrientations: normalizeList(req.SexualOrientations),
		EmergencyContacts:  append([]model.EmergencyContact{}, req.EmergencyContacts...),
		PhotoHashes:        []string{},
	}
	if err := validateProfile(ctx, s.assets, user); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	user.Hash = string(hash)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login authenticates with email and password
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Hash == "" {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*model.TokenResponse, error) {
	token, err := s.signer.Sign(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.signer.GetExpiration().Seconds()),
		UserID:      user.ID,
	}, nil
}

// validateProfile checks the editable profile fields of a user record
func validateProfile(ctx context.Context, assets AssetChecker, u *model.User) error {
	if !isValidColor(u.Color) {
		return ErrInvalidColor
	}
	if u.PreferredName == "" || utf8.RuneCountInString(u.PreferredName) > model.MaxNameLength {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(u.Nickname) > model.MaxNameLength {
		return ErrInvalidNickname
	}
	if utf8.RuneCountInString(u.Bio) > model.MaxBioLength {
		return ErrBioTooLong
	}
	for field, items := range map[string][]string{
		"pronouns":            u.Pronouns,
		"genders":             u.Genders,
		"sexual_orientations": u.SexualOrientations,
	} {
		if err := validateList(field, items, model.MaxListItems); err != nil {
			return err
		}
	}
	if len(u.EmergencyContacts) > model.MaxEmergencyContacts {
		return ErrTooManyItems
	}
	if len(u.PhotoHashes) > model.MaxPhotoHashes {
		return ErrTooManyItems
	}

	if u.AvatarHash != nil {
		if err := assertAsset(ctx, assets, *u.AvatarHash); err != nil {
			return err
		}
	}
	for _, hash := range u.PhotoHashes {
		if err := assertAsset(ctx, assets, hash); err != nil {
			return err
		}
	}
	return nil
}
