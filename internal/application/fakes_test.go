package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	repo "github.com/oksasatya/go-realestate-listings/internal/domain/repository"
	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
	"github.com/oksasatya/go-realestate-listings/pkg/mailer"
	"github.com/oksasatya/go-realestate-listings/pkg/mailer/templates"
)

func init() { helpers.PasswordCost = bcrypt.MinCost }

// memStore is an in-memory database with the same cascade rules as the
// schema: deleting a user removes its profile, properties and authored
// inquiries; deleting a property removes its images and inquiries.
type memStore struct {
	mu        sync.Mutex
	clock     time.Time
	users     map[string]entity.User
	profiles  map[string]entity.Profile
	props     map[string]entity.Property
	images    map[string]entity.PropertyImage
	inquiries map[string]entity.Inquiry
	markReads int
}

func newMemStore() *memStore {
	return &memStore{
		clock:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		users:     map[string]entity.User{},
		profiles:  map[string]entity.Profile{},
		props:     map[string]entity.Property{},
		images:    map[string]entity.PropertyImage{},
		inquiries: map[string]entity.Inquiry{},
	}
}

// tick advances the clock so rows created later sort as newer.
func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) deletePropertyLocked(id string) {
	delete(m.props, id)
	for k, img := range m.images {
		if img.PropertyID == id {
			delete(m.images, k)
		}
	}
	for k, inq := range m.inquiries {
		if inq.PropertyID == id {
			delete(m.inquiries, k)
		}
	}
}

// users

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, acc *entity.Account) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == acc.User.Username {
			return fmt.Errorf("%w: users_username_key", repo.ErrConflict)
		}
	}
	now := r.m.tick()
	acc.User.ID = uuid.NewString()
	acc.User.CreatedAt, acc.User.UpdatedAt = now, now
	acc.Profile.UserID = acc.User.ID
	acc.Profile.CreatedAt, acc.Profile.UpdatedAt = now, now
	r.m.users[acc.User.ID] = acc.User
	r.m.profiles[acc.User.ID] = acc.Profile
	return nil
}

func (r memUsers) find(match func(entity.User) bool) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.ID == id })
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Username == username })
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r memUsers) GetAccount(_ context.Context, id string) (*entity.Account, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	p, ok := r.m.profiles[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &entity.Account{User: u, Profile: p}, nil
}

func (r memUsers) Update(_ context.Context, u *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	u.UpdatedAt = r.m.tick()
	r.m.users[u.ID] = *u
	return nil
}

func (r memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Password = hash
	r.m.users[id] = u
	return nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.m.users, id)
	delete(r.m.profiles, id)
	for pid, p := range r.m.props {
		if p.OwnerID == id {
			r.m.deletePropertyLocked(pid)
		}
	}
	for k, inq := range r.m.inquiries {
		if inq.UserID == id {
			delete(r.m.inquiries, k)
		}
	}
	return nil
}

// profiles

type memProfiles struct{ m *memStore }

func (r memProfiles) Get(_ context.Context, userID string) (*entity.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.profiles[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (r memProfiles) EnsureExists(_ context.Context, userID string) (*entity.Profile, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if p, ok := r.m.profiles[userID]; ok {
		return &p, false, nil
	}
	if _, ok := r.m.users[userID]; !ok {
		return nil, false, repo.ErrNotFound
	}
	now := r.m.tick()
	p := entity.Profile{UserID: userID, Role: entity.RoleBuyer, CreatedAt: now, UpdatedAt: now}
	r.m.profiles[userID] = p
	return &p, true, nil
}

func (r memProfiles) Update(_ context.Context, p *entity.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.profiles[p.UserID]; !ok {
		return repo.ErrNotFound
	}
	p.UpdatedAt = r.m.tick()
	r.m.profiles[p.UserID] = *p
	return nil
}

func (r memProfiles) SetRole(_ context.Context, userID string, role entity.Role) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.profiles[userID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Role = role
	r.m.profiles[userID] = p
	return nil
}

func (r memProfiles) UsersWithoutProfile(context.Context) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var ids []string
	for id := range r.m.users {
		if _, ok := r.m.profiles[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// properties

type memProperties struct{ m *memStore }

func (r memProperties) Create(_ context.Context, p *entity.Property) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[p.OwnerID]; !ok {
		return repo.ErrNotFound
	}
	now := r.m.tick()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	r.m.props[p.ID] = *p
	return nil
}

func (r memProperties) GetByID(_ context.Context, id string) (*entity.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.props[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (r memProperties) FindOwnedBy(_ context.Context, ownerID, id string) (*entity.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.props[id]
	if !ok || p.OwnerID != ownerID {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (r memProperties) Update(_ context.Context, p *entity.Property) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.props[p.ID]; !ok {
		return repo.ErrNotFound
	}
	p.UpdatedAt = r.m.tick()
	r.m.props[p.ID] = *p
	return nil
}

func (r memProperties) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.props[id]; !ok {
		return repo.ErrNotFound
	}
	r.m.deletePropertyLocked(id)
	return nil
}

func (r memProperties) sorted(match func(entity.Property) bool) []entity.Property {
	var out []entity.Property
	for _, p := range r.m.props {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memProperties) ListByOwner(_ context.Context, ownerID string, limit int) ([]entity.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := r.sorted(func(p entity.Property) bool { return p.OwnerID == ownerID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memProperties) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	props, _ := r.ListByOwner(ctx, ownerID, 0)
	ids := make([]string, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (r memProperties) Images(_ context.Context, propertyID string) ([]entity.PropertyImage, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []entity.PropertyImage
	for _, img := range r.m.images {
		if img.PropertyID == propertyID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (r memProperties) AddImage(_ context.Context, img *entity.PropertyImage) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.props[img.PropertyID]; !ok {
		return repo.ErrNotFound
	}
	img.ID = uuid.NewString()
	img.UploadedAt = r.m.tick()
	r.m.images[img.ID] = *img
	return nil
}

func (r memProperties) DeleteImage(_ context.Context, propertyID, imageID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	img, ok := r.m.images[imageID]
	if !ok || img.PropertyID != propertyID {
		return repo.ErrNotFound
	}
	delete(r.m.images, imageID)
	return nil
}

func (r memProperties) SetFeaturedImage(_ context.Context, id, ref string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.props[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.FeaturedImage = ref
	r.m.props[id] = p
	return nil
}

func matchesListing(p entity.Property, f repo.ListingFilter) bool {
	if !p.IsAvailable() {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.City), q) && !strings.Contains(strings.ToLower(p.State), q) {
			return false
		}
	}
	if f.PropertyType != "" && string(p.PropertyType) != f.PropertyType {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinBedrooms != nil && p.Bedrooms < *f.MinBedrooms {
		return false
	}
	if f.MinBathrooms != nil && p.Bathrooms.LessThan(*f.MinBathrooms) {
		return false
	}
	return true
}

func (r memProperties) SearchAvailable(_ context.Context, q repo.ListingQuery) ([]entity.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := r.sorted(func(p entity.Property) bool { return matchesListing(p, q.Filter) })
	less := map[repo.SortKey]func(a, b entity.Property) bool{
		repo.SortOldest:    func(a, b entity.Property) bool { return a.CreatedAt.Before(b.CreatedAt) },
		repo.SortPriceAsc:  func(a, b entity.Property) bool { return a.Price.LessThan(b.Price) },
		repo.SortPriceDesc: func(a, b entity.Property) bool { return a.Price.GreaterThan(b.Price) },
		repo.SortAreaAsc:   func(a, b entity.Property) bool { return a.Area < b.Area },
		repo.SortAreaDesc:  func(a, b entity.Property) bool { return a.Area > b.Area },
	}
	if fn, ok := less[q.Sort]; ok {
		sort.SliceStable(out, func(i, j int) bool { return fn(out[i], out[j]) })
	}
	if q.Offset >= len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r memProperties) CountAvailable(_ context.Context, f repo.ListingFilter) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.sorted(func(p entity.Property) bool { return matchesListing(p, f) })), nil
}

// inquiries

type memInquiries struct{ m *memStore }

func (r memInquiries) Create(_ context.Context, i *entity.Inquiry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.props[i.PropertyID]; !ok {
		return repo.ErrNotFound
	}
	i.ID = uuid.NewString()
	i.CreatedAt = r.m.tick()
	r.m.inquiries[i.ID] = *i
	return nil
}

func (r memInquiries) viewLocked(i entity.Inquiry) entity.InquiryView {
	p := r.m.props[i.PropertyID]
	u := r.m.users[i.UserID]
	return entity.InquiryView{Inquiry: i, PropertyTitle: p.Title, PropertyOwnerID: p.OwnerID, SenderUsername: u.Username}
}

func (r memInquiries) FindVisibleTo(_ context.Context, viewerID, id string, _ bool) (*entity.InquiryView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	i, ok := r.m.inquiries[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	v := r.viewLocked(i)
	if v.PropertyOwnerID != viewerID && v.UserID != viewerID {
		return nil, repo.ErrNotFound
	}
	return &v, nil
}

func (r memInquiries) MarkRead(_ context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.markReads++
	i, ok := r.m.inquiries[id]
	if !ok {
		return false, repo.ErrNotFound
	}
	if i.IsRead {
		return false, nil
	}
	i.IsRead = true
	r.m.inquiries[id] = i
	return true, nil
}

func (r memInquiries) boxLocked(box repo.Mailbox, userID string, unreadOnly bool) []entity.InquiryView {
	var out []entity.InquiryView
	for _, i := range r.m.inquiries {
		v := r.viewLocked(i)
		mine := v.PropertyOwnerID == userID
		if box == repo.MailboxSent {
			mine = v.UserID == userID
		}
		if mine && (!unreadOnly || !v.IsRead) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memInquiries) List(_ context.Context, q repo.InquiryQuery) ([]entity.InquiryView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := r.boxLocked(q.Box, q.UserID, q.UnreadOnly)
	if q.Offset >= len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r memInquiries) Count(_ context.Context, box repo.Mailbox, userID string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.boxLocked(box, userID, false)), nil
}

func (r memInquiries) CountUnreadForProperty(_ context.Context, propertyID string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	for _, i := range r.m.inquiries {
		if i.PropertyID == propertyID && !i.IsRead {
			n++
		}
	}
	return n, nil
}

// collaborators

type countingTx struct{ calls int }

func (t *countingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, msg mailer.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type fakeMedia struct {
	paths []string
	err   error
}

func (f *fakeMedia) Put(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.paths = append(f.paths, objectPath)
	return "https://cdn.example.test/" + objectPath, nil
}

type fakeCache struct {
	entries       map[string][]byte
	sets          int
	invalidations int
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	b, ok := c.entries[key]
	return b, ok
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	if c.entries == nil {
		c.entries = map[string][]byte{}
	}
	c.sets++
	c.entries[key] = value
}

func (c *fakeCache) Invalidate(context.Context) {
	c.invalidations++
	c.entries = nil
}

type fakeIndexer struct {
	indexed map[string]bool
	removed []string
	err     error
}

func (x *fakeIndexer) Index(_ context.Context, p *entity.Property) error {
	if x.err != nil {
		return x.err
	}
	if x.indexed == nil {
		x.indexed = map[string]bool{}
	}
	x.indexed[p.ID] = true
	return nil
}

func (x *fakeIndexer) Remove(_ context.Context, id string) error {
	if x.err != nil {
		return x.err
	}
	delete(x.indexed, id)
	x.removed = append(x.removed, id)
	return nil
}

var errBoom = errors.New("boom")

type testEnv struct {
	store    *memStore
	tx       *countingTx
	notifier *fakeNotifier
	media    *fakeMedia
	cache    *fakeCache
	indexer  *fakeIndexer

	accounts  *AccountService
	props     *PropertyService
	listings  *ListingService
	inquiries *InquiryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:    newMemStore(),
		tx:       &countingTx{},
		notifier: &fakeNotifier{},
		media:    &fakeMedia{},
		cache:    &fakeCache{},
		indexer:  &fakeIndexer{},
	}
	d := Deps{
		Users:      memUsers{env.store},
		Profiles:   memProfiles{env.store},
		Properties: memProperties{env.store},
		Inquiries:  memInquiries{env.store},
		Tx:         env.tx,
		JWT:        helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour),
		Notifier:   env.notifier,
		Media:      env.media,
		Indexer:    env.indexer,
		Cache:      env.cache,
		CacheTTL:   time.Minute,
		Mail: MailSettings{
			From:     "noreply@example.test",
			SiteURL:  "https://homes.example.test",
			ResetURL: "https://homes.example.test/reset",
			Brand:    templates.Brand{AppName: "Homes"},
		},
	}
	env.accounts = NewAccountService(d)
	env.props = NewPropertyService(d)
	env.listings = NewListingService(d)
	env.inquiries = NewInquiryService(d)
	return env
}

const testPassword = "correct-horse-battery"

func (e *testEnv) register(t *testing.T, username string, role entity.Role) *entity.Account {
	t.Helper()
	acc, _, err := e.accounts.Register(context.Background(), RegisterInput{
		Username:        username,
		Email:           username + "@example.test",
		Password:        testPassword,
		ConfirmPassword: testPassword,
		Role:            string(role),
	})
	require.NoError(t, err)
	return acc
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validProperty() PropertyInput {
	return PropertyInput{
		Title:        "Bright family home",
		Description:  "Three bedrooms close to the park.",
		Price:        dec("450000.00"),
		Address:      "12 Elm Street",
		City:         "Austin",
		State:        "TX",
		Zipcode:      "78701",
		Bedrooms:     3,
		Bathrooms:    dec("2.5"),
		Area:         1800,
		PropertyType: string(entity.PropertyHouse),
	}
}

func (e *testEnv) listProperty(t *testing.T, owner *entity.Account, mutate func(*PropertyInput)) *entity.Property {
	t.Helper()
	in := validProperty()
	if mutate != nil {
		mutate(&in)
	}
	p, err := e.props.Create(context.Background(), owner.ID(), in)
	require.NoError(t, err)
	return p
}
