package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"viralclip/internal/model"
	"viralclip/internal/pubsub"
	"viralclip/internal/repository"
)

type fakeTierRepo struct {
	mu    sync.Mutex
	tiers map[string]model.Tier
}

func newFakeTierRepo() *fakeTierRepo {
	return &fakeTierRepo{tiers: map[string]model.Tier{}}
}

func (f *fakeTierRepo) GetTier(_ context.Context, userID string) (*model.UserTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tiers[userID]
	if !ok {
		return nil, nil
	}
	return &model.UserTier{UserID: userID, Tier: t}, nil
}

func (f *fakeTierRepo) SetTier(_ context.Context, userID string, tier model.Tier) (*model.UserTier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiers[userID] = tier
	return &model.UserTier{UserID: userID, Tier: tier}, nil
}

type usageKey struct{ user, date string }

type fakeUsageRepo struct {
	mu     sync.Mutex
	counts map[usageKey]int
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counts: map[usageKey]int{}}
}

func (f *fakeUsageRepo) ConsumeDailyQuota(_ context.Context, userID, date string, limit int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := usageKey{userID, date}
	if f.counts[k] >= limit {
		return 0, repository.ErrDailyLimitReached
	}
	f.counts[k]++
	return f.counts[k], nil
}

func (f *fakeUsageRepo) GetDailyUsage(_ context.Context, userID, date string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[usageKey{userID, date}], nil
}

type fakeClipRepo struct {
	mu     sync.Mutex
	nextID int64
	clips  []model.Clip
	err    error
}

func (f *fakeClipRepo) CreateClip(_ context.Context, c *model.Clip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Unix(f.nextID, 0)
	c.UpdatedAt = c.CreatedAt
	f.clips = append(f.clips, *c)
	return nil
}

func (f *fakeClipRepo) ListClipsByUser(_ context.Context, userID string) ([]model.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Clip{}
	for _, c := range f.clips {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeClipRepo) GetClipByID(_ context.Context, id int64) (*model.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clips {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeRenderRepo struct {
	mu      sync.Mutex
	nextID  int64
	renders map[int64]*model.ClipRender
}

func newFakeRenderRepo() *fakeRenderRepo {
	return &fakeRenderRepo{renders: map[int64]*model.ClipRender{}}
}

func (f *fakeRenderRepo) CreateRender(_ context.Context, clipID int64, userID string, withSubtitles bool) (*model.ClipRender, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r := &model.ClipRender{ID: f.nextID, ClipID: clipID, UserID: userID, Status: model.RenderQueued, WithSubtitles: withSubtitles}
	f.renders[r.ID] = r
	cp := *r
	return &cp, nil
}

func (f *fakeRenderRepo) GetRender(_ context.Context, id int64) (*model.ClipRender, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.renders[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRenderRepo) MarkProcessing(_ context.Context, id int64) error {
	return f.set(id, model.RenderProcessing, nil)
}

func (f *fakeRenderRepo) MarkComplete(_ context.Context, id int64, url, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.renders[id]
	r.Status = model.RenderComplete
	r.URL = &url
	r.StorageKey = &key
	return nil
}

func (f *fakeRenderRepo) MarkFailed(_ context.Context, id int64, reason string) error {
	return f.set(id, model.RenderFailed, &reason)
}

func (f *fakeRenderRepo) set(id int64, status model.RenderStatus, reason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.renders[id]
	if !ok {
		return errors.New("render not found")
	}
	r.Status = status
	r.Error = reason
	return nil
}

type fakePrefsRepo struct {
	mu    sync.Mutex
	prefs map[string]model.UserPreferences
}

func newFakePrefsRepo() *fakePrefsRepo {
	return &fakePrefsRepo{prefs: map[string]model.UserPreferences{}}
}

func (f *fakePrefsRepo) GetPreferences(_ context.Context, userID string) (*model.UserPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePrefsRepo) UpsertPreferences(_ context.Context, userID string, upd model.PreferencesUpdate) (*model.UserPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[userID]
	if !ok {
		p = model.UserPreferences{UserID: userID}
	}
	if upd.DefaultArtistName != nil {
		p.DefaultArtistName = upd.DefaultArtistName
	}
	if upd.DefaultTheme != nil {
		p.DefaultTheme = upd.DefaultTheme
	}
	if upd.SubtitlesEnabled != nil {
		p.SubtitlesEnabled = *upd.SubtitlesEnabled
	}
	f.prefs[userID] = p
	return &p, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) UpsertUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.users[u.UserID]; ok && existing.Role == model.RoleAdmin {
		u.Role = model.RoleAdmin
	}
	cp := *u
	f.users[u.UserID] = &cp
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetUserByStripeCustomerID(_ context.Context, customerID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateStripeCustomerID(_ context.Context, userID, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return errors.New("no user")
	}
	u.StripeCustomerID = &customerID
	return nil
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []model.RenderJob
	err  error
}

func (f *fakeQueue) Enqueue(_ context.Context, job model.RenderJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []pubsub.ClipEvent
	err    error
}

func (f *fakeEvents) PublishClipEvent(_ context.Context, ev pubsub.ClipEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return "id", f.err
}

// scriptedLLM answers by schema name; unknown names fail.
type scriptedLLM struct {
	mu      sync.Mutex
	answers map[string]string
	err     error
	calls   []string
}

func (s *scriptedLLM) Complete(ctx context.Context, _ []ChatMessage, schema *ResponseSchema) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, schema.Name)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.err != nil {
		return "", s.err
	}
	a, ok := s.answers[schema.Name]
	if !ok {
		return "", errors.New("no scripted answer")
	}
	return a, nil
}
