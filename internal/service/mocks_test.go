package service

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/forgo/hearth/api/internal/model"
)

// memStore is an in-memory backing store shared by the repository mocks
type memStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	groups   map[string]*model.Group
	houses   map[string]*model.House
	rels     map[[2]string]*model.Relationship
	messages []storedMessage
	assets   map[string]*model.Asset
	nextID   int

	// relLookups counts relationship reads
	relLookups int
	// getErr, when set, fails every read
	getErr error
	// listErr, when set, fails member listings
	listErr error
	// racedRel, when set, is stored by the next relationship Create, which
	// then reports the row as already existing
	racedRel *model.Relationship
}

type storedMessage struct {
	seq int64
	msg *model.ChatMessage
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[string]*model.User),
		groups: make(map[string]*model.Group),
		houses: make(map[string]*model.House),
		rels:   make(map[[2]string]*model.Relationship),
		assets: make(map[string]*model.Asset),
	}
}

func (m *memStore) id(table string) string {
	m.nextID++
	return fmt.Sprintf("%s:%d", table, m.nextID)
}

// ---- fixtures ----

func (m *memStore) addUser(id string, groupID *string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &model.User{
		ID:                 id,
		Email:              id + "@example.com",
		Color:              "#336699",
		Nickname:           "nick-" + id,
		PreferredName:      "name-" + id,
		Bio:                "bio of " + id,
		Pronouns:           []string{"they/them"},
		Genders:            []string{"nonbinary"},
		SexualOrientations: []string{"queer"},
		EmergencyContacts:  []model.EmergencyContact{{Name: "Mom", Phone: "555-0100"}},
		PhotoHashes:        []string{},
		GroupID:            groupID,
	}
	m.users[id] = u
	return u
}

func (m *memStore) addGroup(id string, loc *model.GeoPoint) *model.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &model.Group{ID: id, Name: "group " + id, Bio: "a household", Location: loc}
	m.groups[id] = g
	return g
}

func (m *memStore) addHouse(id, groupID string, loc model.GeoPoint) *model.House {
	m.mu.Lock()
	defer m.mu.Unlock()
	gid := groupID
	h := &model.House{ID: id, Location: loc, GroupID: &gid}
	m.houses[id] = h
	if g, ok := m.groups[groupID]; ok {
		g.HouseID = &h.ID
		g.HasHouse = true
		l := loc
		g.Location = &l
	}
	return h
}

func (m *memStore) setRel(userID, groupID string, level model.AccessLevel, open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rels[[2]string{userID, groupID}] = &model.Relationship{UserID: userID, GroupID: groupID, Level: level, OpenDMs: open}
}

func (m *memStore) rel(userID, groupID string) *model.Relationship {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rels[[2]string{userID, groupID}]
}

func strPtr(s string) *string { return &s }

// ---- users ----

type memUsers struct{ *memStore }

func (r memUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r memUsers) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.id("user")
	u.CreatedOn = time.Now()
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r memUsers) Update(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r memUsers) ListByGroup(ctx context.Context, groupID string) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*model.User
	for _, u := range r.users {
		if u.InGroup(groupID) {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

// ---- groups ----

type memGroups struct{ *memStore }

func (r memGroups) load(id string) *model.Group {
	g, ok := r.groups[id]
	if !ok {
		return nil
	}
	c := *g
	c.MemberIDs = []string{}
	for _, u := range r.users {
		if u.InGroup(id) {
			c.MemberIDs = append(c.MemberIDs, u.ID)
		}
	}
	sort.Strings(c.MemberIDs)
	return &c
}

func (r memGroups) GetByID(ctx context.Context, id string) (*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.load(id), nil
}

func (r memGroups) Create(ctx context.Context, g *model.Group, founderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.ID = r.id("household")
	c := *g
	r.groups[g.ID] = &c
	if u, ok := r.users[founderID]; ok {
		u.GroupID = &g.ID
	}
	return nil
}

func (r memGroups) Update(ctx context.Context, g *model.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *g
	r.groups[g.ID] = &c
	return nil
}

func (r memGroups) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.InGroup(id) {
			u.GroupID = nil
		}
	}
	for _, h := range r.houses {
		if h.GroupID != nil && *h.GroupID == id {
			h.GroupID = nil
		}
	}
	delete(r.groups, id)
	return nil
}

func (r memGroups) AddMember(ctx context.Context, groupID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	gid := groupID
	r.users[userID].GroupID = &gid
	return nil
}

func (r memGroups) RemoveMember(ctx context.Context, groupID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID].GroupID = nil
	return nil
}

func (r memGroups) Stream(ctx context.Context, f GroupFilter) iter.Seq2[*model.Group, error] {
	return func(yield func(*model.Group, error) bool) {
		r.mu.Lock()
		ids := make([]string, 0, len(r.groups))
		for id := range r.groups {
			ids = append(ids, id)
		}
		var snapshot []*model.Group
		slices.Sort(ids)
		for _, id := range ids {
			g := r.load(id)
			if f.HasHouse != nil && g.HasHouse != *f.HasHouse {
				continue
			}
			if f.Box != nil && (g.Location == nil || !f.Box.Contains(*g.Location)) {
				continue
			}
			snapshot = append(snapshot, g)
		}
		r.mu.Unlock()

		for _, g := range snapshot {
			if !yield(g, nil) {
				return
			}
		}
	}
}

// ---- houses ----

type memHouses struct{ *memStore }

func (r memHouses) GetByID(ctx context.Context, id string) (*model.House, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.houses[id]
	if !ok {
		return nil, nil
	}
	c := *h
	return &c, nil
}

func (r memHouses) Create(ctx context.Context, h *model.House, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = r.id("house")
	c := *h
	r.houses[h.ID] = &c
	g := r.groups[groupID]
	g.HouseID = &c.ID
	g.HasHouse = true
	loc := h.Location
	g.Location = &loc
	return nil
}

func (r memHouses) Update(ctx context.Context, h *model.House) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *h
	r.houses[h.ID] = &c
	if h.GroupID != nil {
		if g, ok := r.groups[*h.GroupID]; ok {
			loc := h.Location
			g.Location = &loc
		}
	}
	return nil
}

func (r memHouses) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.HouseID != nil && *g.HouseID == id {
			g.HouseID = nil
			g.HasHouse = false
		}
	}
	delete(r.houses, id)
	return nil
}

func (r memHouses) Stream(ctx context.Context, box *BoundingBox) iter.Seq2[*model.House, error] {
	return func(yield func(*model.House, error) bool) {
		r.mu.Lock()
		var snapshot []*model.House
		for _, h := range r.houses {
			if box != nil && !box.Contains(h.Location) {
				continue
			}
			c := *h
			snapshot = append(snapshot, &c)
		}
		r.mu.Unlock()
		for _, h := range snapshot {
			if !yield(h, nil) {
				return
			}
		}
	}
}

// ---- relationships ----

type memRels struct{ *memStore }

func (r memRels) Get(ctx context.Context, userID, groupID string) (*model.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.relLookups++
	if r.getErr != nil {
		return nil, r.getErr
	}
	rel, ok := r.rels[[2]string{userID, groupID}]
	if !ok {
		return nil, nil
	}
	c := *rel
	return &c, nil
}

func (r memRels) Create(ctx context.Context, rel *model.Relationship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if raced := r.racedRel; raced != nil {
		r.racedRel = nil
		c := *raced
		r.rels[[2]string{raced.UserID, raced.GroupID}] = &c
		return fmt.Errorf("create relationship: %w", ErrRelationshipExists)
	}
	c := *rel
	r.rels[[2]string{rel.UserID, rel.GroupID}] = &c
	return nil
}

func (r memRels) Update(ctx context.Context, rel *model.Relationship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *rel
	r.rels[[2]string{rel.UserID, rel.GroupID}] = &c
	return nil
}

func (r memRels) ListByGroup(ctx context.Context, groupID string) ([]*model.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Relationship
	for k, rel := range r.rels {
		if k[1] == groupID {
			c := *rel
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memRels) ListOpenByUser(ctx context.Context, userID string) ([]*model.Relationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Relationship
	for k, rel := range r.rels {
		if k[0] == userID && rel.OpenDMs {
			c := *rel
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupID < out[j].GroupID })
	return out, nil
}

// ---- chat ----

type memChat struct{ *memStore }

func (r memChat) Create(ctx context.Context, msg *model.ChatMessage, seq int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, storedMessage{seq: seq, msg: msg})
	return nil
}

func (r memChat) List(ctx context.Context, groupID string, before int64, limit int) ([]*model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ChatMessage
	for i := len(r.messages) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.messages[i]
		if m.msg.GroupID != groupID || (before != 0 && m.seq >= before) {
			continue
		}
		out = append(out, m.msg)
	}
	return out, nil
}

// ---- assets ----

type memAssets struct{ *memStore }

func (r memAssets) Exists(ctx context.Context, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.assets[hash]
	return ok, nil
}

func (r memAssets) Get(ctx context.Context, hash string) (*model.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[hash]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (r memAssets) Put(ctx context.Context, a *model.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[a.Hash] = a
	return nil
}

// recordingObserver captures access check outcomes
type recordingObserver struct {
	mu     sync.Mutex
	checks []string
}

func (o *recordingObserver) ObserveAccessCheck(check string, granted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.checks = append(o.checks, fmt.Sprintf("%s:%t", check, granted))
}

func newResolver(m *memStore) *AccessResolver {
	return NewAccessResolver(AccessResolverConfig{
		UserRepo:         memUsers{m},
		GroupRepo:        memGroups{m},
		RelationshipRepo: memRels{m},
	})
}
