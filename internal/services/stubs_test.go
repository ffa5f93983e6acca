package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/notify"
	"github.com/sidharth07/verbiforge-sub000/internal/pricing"
	"github.com/sidharth07/verbiforge-sub000/internal/repositories"
	"github.com/sidharth07/verbiforge-sub000/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
	// dupHumanIDOnce makes the next Create fail as if human_id were taken.
	dupHumanIDOnce bool
	maxErr         error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[uuid.UUID]models.User{}}
}

func (s *memUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dupHumanIDOnce {
		s.dupHumanIDOnce = false
		return &repositories.DuplicateError{Constraint: repositories.UsersHumanIDKey}
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return &repositories.DuplicateError{Constraint: repositories.UsersEmailKey}
		}
		if u.HumanID == user.HumanID {
			return &repositories.DuplicateError{Constraint: repositories.UsersHumanIDKey}
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (s *memUserStore) FindByHumanID(ctx context.Context, humanID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.HumanID == humanID {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memUserStore) List(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HumanID < out[j].HumanID })
	return out, nil
}

func (s *memUserStore) ListByParent(ctx context.Context, parentID uuid.UUID) ([]models.User, error) {
	all, _ := s.List(ctx)
	var out []models.User
	for _, u := range all {
		if u.ParentUserID != nil && *u.ParentUserID == parentID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *memUserStore) SetParent(ctx context.Context, userID uuid.UUID, parentID *uuid.UUID, license models.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.ParentUserID = parentID
	u.License = license
	s.users[userID] = u
	return nil
}

func (s *memUserStore) DetachChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, u := range s.users {
		if u.ParentUserID != nil && *u.ParentUserID == parentID {
			u.ParentUserID = nil
			u.License = models.LicenseFree
			s.users[id] = u
			n++
		}
	}
	return n, nil
}

func (s *memUserStore) update(id uuid.UUID, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(&u)
	s.users[id] = u
	return nil
}

func (s *memUserStore) UpdateRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	return s.update(userID, func(u *models.User) { u.Role = role })
}

func (s *memUserStore) UpdateLicense(ctx context.Context, userID uuid.UUID, license models.License) error {
	return s.update(userID, func(u *models.User) { u.License = license })
}

func (s *memUserStore) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return s.update(userID, func(u *models.User) { u.LastLoginAt = &at })
}

func (s *memUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *memUserStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *memUserStore) MaxHumanID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxErr != nil {
		return 0, s.maxErr
	}
	var max int64
	for _, u := range s.users {
		if u.HumanID > max {
			max = u.HumanID
		}
	}
	return max, nil
}

type memProjectStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]models.Project
	maxErr   error
	// dupHumanIDs makes that many upcoming Creates fail as if human_id were taken.
	dupHumanIDs int
	creates     int
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: map[uuid.UUID]models.Project{}}
}

func (s *memProjectStore) Create(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.dupHumanIDs > 0 {
		s.dupHumanIDs--
		return &repositories.DuplicateError{Constraint: repositories.ProjectsHumanIDKey}
	}
	for _, p := range s.projects {
		if p.HumanID == project.HumanID {
			return &repositories.DuplicateError{Constraint: repositories.ProjectsHumanIDKey}
		}
	}
	project.UpdatedAt = project.CreatedAt
	s.projects[project.ID] = *project
	return nil
}

func (s *memProjectStore) FindByID(ctx context.Context, id string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uid, err := uuid.Parse(id); err == nil {
		if p, ok := s.projects[uid]; ok {
			return &p, nil
		}
		return nil, repositories.ErrNotFound
	}
	for _, p := range s.projects {
		if p.HumanID == id {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *memProjectStore) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Project
	for _, p := range s.projects {
		if filter.OwnerID != nil && p.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HumanID < out[j].HumanID })
	return out, nil
}

func (s *memProjectStore) UpdateLifecycle(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[project.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.projects[project.ID] = *project
	return nil
}

func (s *memProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *memProjectStore) MaxHumanIDPrefix(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxErr != nil {
		return 0, s.maxErr
	}
	var max int64
	for _, p := range s.projects {
		prefix, _, _ := strings.Cut(p.HumanID, "-")
		var n int64
		for _, c := range prefix {
			n = n*10 + int64(c-'0')
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

type memRateStore struct {
	mu     sync.Mutex
	table  *pricing.RateTable
	getErr error
}

func (s *memRateStore) Get(ctx context.Context) (pricing.RateTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return pricing.RateTable{}, s.getErr
	}
	if s.table == nil {
		return pricing.RateTable{}, repositories.ErrNotFound
	}
	return s.table.Clone(), nil
}

func (s *memRateStore) Save(ctx context.Context, table pricing.RateTable) (pricing.RateTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := table.Clone()
	saved.Version = 1
	if s.table != nil {
		saved.Version = s.table.Version + 1
	}
	saved.UpdatedAt = time.Now()
	s.table = &saved
	return saved.Clone(), nil
}

func (s *memRateStore) SeedIfMissing(ctx context.Context, table pricing.RateTable) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table != nil {
		return false, nil
	}
	seeded := table.Clone()
	seeded.Version = 1
	s.table = &seeded
	return true, nil
}

type memTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{revoked: map[string]time.Duration{}}
}

func (s *memTokenStore) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[jti]
	return ok, nil
}

func (s *memTokenStore) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.revoked[jti] = ttl
	return nil
}

type memContactStore struct {
	submissions []models.ContactSubmission
	err         error
}

func (s *memContactStore) Create(ctx context.Context, submission *models.ContactSubmission) error {
	if s.err != nil {
		return s.err
	}
	submission.ID = uuid.New()
	submission.CreatedAt = time.Now()
	s.submissions = append(s.submissions, *submission)
	return nil
}

func (s *memContactStore) Recent(ctx context.Context, limit int) ([]models.ContactSubmission, error) {
	out := make([]models.ContactSubmission, 0, limit)
	for i := len(s.submissions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.submissions[i])
	}
	return out, nil
}

type memFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: map[string][]byte{}}
}

func (s *memFileStore) Store(ctx context.Context, projectID, fileName string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ext := ""
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		ext = strings.ToLower(fileName[i:])
	}
	ref := projectID + "/" + uuid.NewString() + ext
	s.files[ref] = append([]byte(nil), data...)
	return ref, nil
}

func (s *memFileStore) Retrieve(ctx context.Context, ref string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[ref]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (s *memFileStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, ref)
	return nil
}

func (s *memFileStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	fail   bool
}

func (n *recordingNotifier) Notify(ctx context.Context, event notify.Event) notify.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	if n.fail {
		return notify.Failed(errors.New("smtp unavailable"))
	}
	return notify.Delivered()
}

func (n *recordingNotifier) kinds() []notify.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.EventKind, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Kind)
	}
	return out
}

// fixture wires every service over in-memory stores.
type fixture struct {
	users    *memUserStore
	projects *memProjectStore
	rates    *memRateStore
	tokens   *memTokenStore
	contacts *memContactStore
	files    *memFileStore
	notifier *recordingNotifier

	ids      *IDGenerator
	rateSvc  *RateService
	quoteSvc *QuoteService
	userSvc  *UserService
	acctSvc  *AccountService
	projSvc  *ProjectService
}

func newFixture() *fixture {
	log := discardLogger()
	f := &fixture{
		users:    newMemUserStore(),
		projects: newMemProjectStore(),
		rates:    &memRateStore{},
		tokens:   newMemTokenStore(),
		contacts: &memContactStore{},
		files:    newMemFileStore(),
		notifier: &recordingNotifier{},
	}
	f.ids = NewIDGenerator(f.users, f.projects, log)
	f.rateSvc = NewRateService(f.rates, pricing.DefaultRateTable(), log)
	f.quoteSvc = NewQuoteService(f.rateSvc)
	f.userSvc = NewUserService(f.users, f.projects, f.files, f.ids, log)
	f.acctSvc = NewAccountService(f.users, f.userSvc, log)
	f.projSvc = NewProjectService(f.projects, f.users, f.quoteSvc, f.ids, f.files, f.notifier, log)
	return f
}

// seedUser inserts a user directly and returns its actor.
func (f *fixture) seedUser(humanID int64, email string, role models.Role) models.Actor {
	u := &models.User{
		ID:           uuid.New(),
		HumanID:      humanID,
		Email:        email,
		Name:         email,
		PasswordHash: "x",
		Role:         role,
		License:      models.LicenseFree,
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return models.ActorFor(u)
}
