package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/forgo/hearth/api/internal/database"
	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Password is the password of every fixture user
const Password = "testpass123"

// Factory creates records through the repositories
type Factory struct {
	Users         *repository.UserRepository
	Groups        *repository.GroupRepository
	Houses        *repository.HouseRepository
	Relationships *repository.RelationshipRepository
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{
		Users:         repository.NewUserRepository(db),
		Groups:        repository.NewGroupRepository(db, 50),
		Houses:        repository.NewHouseRepository(db, 50),
		Relationships: repository.NewRelationshipRepository(db),
	}
}

func randomID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// UserOpts customizes user creation
type UserOpts struct {
	Email         string
	PreferredName string
	Color         string
	Bio           string
}

// CreateUser creates a user without a group
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	o := &UserOpts{
		Email:         fmt.Sprintf("user_%s@test.local", randomID()),
		PreferredName: "Test " + randomID(),
		Color:         "#336699",
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	user := &model.User{
		Email:              o.Email,
		Hash:               string(hash),
		Color:              o.Color,
		Nickname:           o.PreferredName,
		PreferredName:      o.PreferredName,
		Bio:                o.Bio,
		Pronouns:           []string{},
		Genders:            []string{},
		SexualOrientations: []string{},
		EmergencyContacts:  []model.EmergencyContact{},
		PhotoHashes:        []string{},
	}
	if err := f.Users.Create(ctx(t), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}
	return user
}

// GroupOpts customizes group creation
type GroupOpts struct {
	Name     string
	Bio      string
	Location *model.GeoPoint
}

// At places the group at a point
func At(lat, lon float64) func(*GroupOpts) {
	return func(o *GroupOpts) {
		o.Location = &model.GeoPoint{Lat: lat, Lon: lon}
	}
}

// CreateGroup creates a group founded by founder and updates founder's
// group id
func (f *Factory) CreateGroup(t *testing.T, founder *model.User, opts ...func(*GroupOpts)) *model.Group {
	t.Helper()

	o := &GroupOpts{
		Name: "Group " + randomID(),
		Bio:  "Test group",
	}
	for _, fn := range opts {
		fn(o)
	}

	group := &model.Group{Name: o.Name, Bio: o.Bio, Location: o.Location}
	if err := f.Groups.Create(ctx(t), group, founder.ID); err != nil {
		t.Fatalf("fixtures: failed to create group: %v", err)
	}
	founder.GroupID = &group.ID
	return group
}

// AddMember puts user in group
func (f *Factory) AddMember(t *testing.T, group *model.Group, user *model.User) {
	t.Helper()

	if err := f.Groups.AddMember(ctx(t), group.ID, user.ID); err != nil {
		t.Fatalf("fixtures: failed to add member: %v", err)
	}
	group.MemberIDs = append(group.MemberIDs, user.ID)
	user.GroupID = &group.ID
}

// CreateHouse creates the group's house at a point
func (f *Factory) CreateHouse(t *testing.T, group *model.Group, lat, lon float64) *model.House {
	t.Helper()

	house := &model.House{Location: model.GeoPoint{Lat: lat, Lon: lon}}
	if err := f.Houses.Create(ctx(t), house, group.ID); err != nil {
		t.Fatalf("fixtures: failed to create house: %v", err)
	}
	group.HouseID = &house.ID
	group.HasHouse = true
	group.Location = &house.Location
	return house
}

// CreateRelationship records user's standing toward group
func (f *Factory) CreateRelationship(t *testing.T, user *model.User, group *model.Group, level model.AccessLevel, openDMs bool) *model.Relationship {
	t.Helper()

	rel := &model.Relationship{
		UserID:  user.ID,
		GroupID: group.ID,
		Level:   level,
		OpenDMs: openDMs,
	}
	if err := f.Relationships.Create(ctx(t), rel); err != nil {
		t.Fatalf("fixtures: failed to create relationship: %v", err)
	}
	return rel
}
