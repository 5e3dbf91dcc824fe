package repository

import (
	"context"
	"fmt"

	"github.com/forgo/hearth/api/internal/database"
	"github.com/forgo/hearth/api/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		CREATE user CONTENT {
			email: $email,
			hash: $hash,
			color: $color,
			avatar_hash: IF $avatar_hash IS NOT NULL THEN $avatar_hash ELSE NONE END,
			nickname: $nickname,
			preferred_name: $preferred_name,
			bio: $bio,
			pronouns: $pronouns,
			genders: $genders,
			sexual_orientations: $sexual_orientations,
			emergency_contacts: $emergency_contacts,
			photo_hashes: $photo_hashes,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := profileVars(user)
	vars["email"] = user.Email
	vars["hash"] = user.Hash

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	created, err := lastRecord(results)
	if err != nil {
		return err
	}

	user.ID = recordID(created["id"])
	user.CreatedOn = getTime(created, "created_on")
	user.UpdatedOn = getTime(created, "updated_on")
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if !inTable(id, "user") {
		return nil, nil
	}
	return queryOne(func() (any, error) {
		return r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]any{"id": id})
	}, parseUser)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return queryOne(func() (any, error) {
		return r.db.QueryOne(ctx, `SELECT * FROM user WHERE email = $email LIMIT 1`, map[string]any{"email": email})
	}, parseUser)
}

// Update writes the editable profile fields. Email, hash and group
// membership have their own flows.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE type::record($id) SET
			color = $color,
			avatar_hash = IF $avatar_hash IS NOT NULL THEN $avatar_hash ELSE NONE END,
			nickname = $nickname,
			preferred_name = $preferred_name,
			bio = $bio,
			pronouns = $pronouns,
			genders = $genders,
			sexual_orientations = $sexual_orientations,
			emergency_contacts = $emergency_contacts,
			photo_hashes = $photo_hashes,
			updated_on = time::now()
	`
	vars := profileVars(user)
	vars["id"] = user.ID

	return r.db.Execute(ctx, query, vars)
}

// ListByGroup returns the members of a group
func (r *UserRepository) ListByGroup(ctx context.Context, groupID string) ([]*model.User, error) {
	query := `SELECT * FROM user WHERE household = type::record($group) ORDER BY created_on`
	results, err := r.db.Query(ctx, query, map[string]any{"group": groupID})
	if err != nil {
		return nil, err
	}

	rows := database.Records(results, 0)
	users := make([]*model.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, parseUser(row))
	}
	return users, nil
}

func profileVars(u *model.User) map[string]any {
	contacts := make([]map[string]any, 0, len(u.EmergencyContacts))
	for _, c := range u.EmergencyContacts {
		contacts = append(contacts, map[string]any{
			"name":         c.Name,
			"phone":        c.Phone,
			"relationship": c.Relationship,
		})
	}
	return map[string]any{
		"color":               u.Color,
		"avatar_hash":         ptrToNone(u.AvatarHash),
		"nickname":            u.Nickname,
		"preferred_name":      u.PreferredName,
		"bio":                 u.Bio,
		"pronouns":            nonNil(u.Pronouns),
		"genders":             nonNil(u.Genders),
		"sexual_orientations": nonNil(u.SexualOrientations),
		"emergency_contacts":  contacts,
		"photo_hashes":        nonNil(u.PhotoHashes),
	}
}

func parseUser(data map[string]any) *model.User {
	user := &model.User{
		ID:                 recordID(data["id"]),
		Email:              getString(data, "email"),
		Hash:               getString(data, "hash"),
		Color:              getString(data, "color"),
		AvatarHash:         getStringPtr(data, "avatar_hash"),
		Nickname:           getString(data, "nickname"),
		PreferredName:      getString(data, "preferred_name"),
		Bio:                getString(data, "bio"),
		Pronouns:           getStringSlice(data, "pronouns"),
		Genders:            getStringSlice(data, "genders"),
		SexualOrientations: getStringSlice(data, "sexual_orientations"),
		EmergencyContacts:  []model.EmergencyContact{},
		PhotoHashes:        getStringSlice(data, "photo_hashes"),
		GroupID:            getRecordPtr(data, "household"),
		CreatedOn:          getTime(data, "created_on"),
		UpdatedOn:          getTime(data, "updated_on"),
	}
	if contacts, ok := data["emergency_contacts"].([]any); ok {
		for _, item := range contacts {
			if c, ok := item.(map[string]any); ok {
				user.EmergencyContacts = append(user.EmergencyContacts, model.EmergencyContact{
					Name:         getString(c, "name"),
					Phone:        getString(c, "phone"),
					Relationship: getString(c, "relationship"),
				})
			}
		}
	}
	return user
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
