package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"viralclip/internal/middleware"
	"viralclip/internal/model"
	"viralclip/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipService struct {
	genErr    error
	gotInput  service.GenerateClipInput
	clips     []model.Clip
	usage     *service.UsageSummary
	renderErr error
	gotSubs   *bool
}

func (f *fakeClipService) GenerateClip(ctx context.Context, userID string, in service.GenerateClipInput) (*model.Clip, error) {
	f.gotInput = in
	if f.genErr != nil {
		return nil, f.genErr
	}
	return &model.Clip{
		ID: 1, UserID: userID, VideoURL: in.VideoURL, VideoSource: in.VideoSource,
		ArtistName: in.ArtistName, SceneTheme: in.SceneTheme, ClipTitle: "Title",
		StartTime: 10, EndTime: 25, Duration: 15, ViralScore: 96,
		SentimentAnalysis: &model.SentimentAnalysis{ViralPotential: 80},
	}, nil
}

func (f *fakeClipService) GetClips(ctx context.Context, userID string) ([]model.Clip, error) {
	return f.clips, nil
}

func (f *fakeClipService) GetDailyUsage(ctx context.Context, userID string) (*service.UsageSummary, error) {
	return f.usage, nil
}

func (f *fakeClipService) RequestRender(ctx context.Context, userID string, clipID int64, withSubtitles *bool) (*model.ClipRender, error) {
	f.gotSubs = withSubtitles
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return &model.ClipRender{ID: 5, ClipID: clipID, UserID: userID, Status: model.RenderQueued, WithSubtitles: true, CreatedAt: time.Now()}, nil
}

type fakeSubService struct {
	tier model.Tier
}

func (f *fakeSubService) GetTier(ctx context.Context, userID string) (model.Tier, error) {
	return f.tier, nil
}

func (f *fakeSubService) SetTier(ctx context.Context, userID string, tier model.Tier) (*model.UserTier, error) {
	return &model.UserTier{UserID: userID, Tier: tier}, nil
}

type fakeBilling struct {
	err error
}

func (f *fakeBilling) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	return "https://checkout.test/s", f.err
}

func (f *fakeBilling) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	return "https://portal.test/s", f.err
}

func (f *fakeBilling) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type fakeUserService struct {
	signIn service.SignInInput
	prefs  model.PreferencesUpdate
}

func (f *fakeUserService) SignIn(ctx context.Context, userID string, in service.SignInInput) (*model.User, error) {
	f.signIn = in
	return &model.User{UserID: userID, Name: in.Name, Role: model.RoleUser}, nil
}

func (f *fakeUserService) Get(ctx context.Context, id string) (*model.User, error) {
	return nil, service.ErrUserNotFound
}

func (f *fakeUserService) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	return &model.UserPreferences{UserID: userID, SubtitlesEnabled: true}, nil
}

func (f *fakeUserService) UpdatePreferences(ctx context.Context, userID string, upd model.PreferencesUpdate) (*model.UserPreferences, error) {
	f.prefs = upd
	return &model.UserPreferences{UserID: userID, DefaultArtistName: upd.DefaultArtistName, SubtitlesEnabled: upd.SubtitlesEnabled != nil && *upd.SubtitlesEnabled}, nil
}

// fakeAuth authenticates every request as user-1.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.UserContextKey, "user-1")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type testServer struct {
	mux     *http.ServeMux
	clips   *fakeClipService
	users   *fakeUserService
	billing *fakeBilling
}

func newTestServer() *testServer {
	ts := &testServer{
		mux:     http.NewServeMux(),
		clips:   &fakeClipService{usage: &service.UsageSummary{ClipsGenerated: 3, DailyLimit: 15, Remaining: 12}},
		users:   &fakeUserService{},
		billing: &fakeBilling{},
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	NewClipHandler(ts.clips, v, zerolog.Nop()).RegisterRoutes(ts.mux, fakeAuth)
	NewUserHandler(ts.users, v, zerolog.Nop()).RegisterRoutes(ts.mux, fakeAuth)
	NewSubscriptionHandler(ts.billing, &fakeSubService{tier: model.TierLite}, zerolog.Nop()).RegisterRoutes(ts.mux, fakeAuth)
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

const validClip = `{"videoUrl":"https://videos.test/a.mp4","videoSource":"upload","artistName":" Artist ","sceneTheme":"dance"}`

func TestGenerateClipCreated(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/clips", validClip)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	clip := body["clip"].(map[string]any)
	assert.Equal(t, float64(96), clip["viralScore"])
	assert.Equal(t, "Artist", clip["artistName"])
	assert.Equal(t, float64(80), clip["sentimentAnalysis"].(map[string]any)["viralPotential"])
	assert.Equal(t, "Artist", ts.clips.gotInput.ArtistName)
}

func TestGenerateClipValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"bad url", `{"videoUrl":"not a url","videoSource":"upload","artistName":"a","sceneTheme":"b"}`},
		{"bad source", `{"videoUrl":"https://v.test/a.mp4","videoSource":"vimeo","artistName":"a","sceneTheme":"b"}`},
		{"blank artist", `{"videoUrl":"https://v.test/a.mp4","videoSource":"youtube","artistName":"   ","sceneTheme":"b"}`},
		{"missing theme", `{"videoUrl":"https://v.test/a.mp4","videoSource":"youtube","artistName":"a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			rec := ts.do(http.MethodPost, "/clips", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, ts.clips.gotInput.VideoURL)
		})
	}
}

func TestGenerateClipErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"quota", &service.QuotaExceededError{Limit: 15}, http.StatusForbidden, "Lite users can only generate 15 clips per day"},
		{"missing tier", service.ErrTierNotFound, http.StatusInternalServerError, "internal server error"},
		{"other", errors.New("db down"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.clips.genErr = tt.err
			rec := ts.do(http.MethodPost, "/clips", validClip)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestGetClipsEmptyIsArray(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/clips", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetClipsIncludesLatestRender(t *testing.T) {
	ts := newTestServer()
	url := "https://cdn.test/c.mp4"
	ts.clips.clips = []model.Clip{
		{ID: 2, LatestRender: &model.ClipRender{ID: 9, ClipID: 2, Status: model.RenderComplete, URL: &url}},
		{ID: 1},
	}

	rec := ts.do(http.MethodGet, "/clips", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, float64(2), body[0]["id"])
	assert.Equal(t, "complete", body[0]["latestRender"].(map[string]any)["status"])
	assert.NotContains(t, body[1], "latestRender")
}

func TestRequestRender(t *testing.T) {
	t.Run("accepted without body", func(t *testing.T) {
		ts := newTestServer()
		rec := ts.do(http.MethodPost, "/clips/7/render", "")
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Nil(t, ts.clips.gotSubs)
	})
	t.Run("subtitles override", func(t *testing.T) {
		ts := newTestServer()
		rec := ts.do(http.MethodPost, "/clips/7/render", `{"withSubtitles":false}`)
		assert.Equal(t, http.StatusAccepted, rec.Code)
		require.NotNil(t, ts.clips.gotSubs)
		assert.False(t, *ts.clips.gotSubs)
	})
	t.Run("bad id", func(t *testing.T) {
		ts := newTestServer()
		rec := ts.do(http.MethodPost, "/clips/abc/render", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("not found", func(t *testing.T) {
		ts := newTestServer()
		ts.clips.renderErr = service.ErrClipNotFound
		rec := ts.do(http.MethodPost, "/clips/7/render", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUsageAndTier(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/usage", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"clipsGenerated":3,"dailyLimit":15,"remaining":12}`, rec.Body.String())

	rec = ts.do(http.MethodGet, "/tier", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tier":"lite"}`, rec.Body.String())
}

func TestUserRoutes(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/users/me", `{"name":"Ada"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, ts.users.signIn.Name)
	assert.Equal(t, "Ada", *ts.users.signIn.Name)

	rec = ts.do(http.MethodPost, "/users/me", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/users/me", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, "/users/me/preferences", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"defaultArtistName":null,"defaultTheme":null,"subtitlesEnabled":true}`, rec.Body.String())

	rec = ts.do(http.MethodPut, "/users/me/preferences", `{"defaultArtistName":"Ada","subtitlesEnabled":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, ts.users.prefs.DefaultTheme)
	require.NotNil(t, ts.users.prefs.SubtitlesEnabled)
	assert.True(t, *ts.users.prefs.SubtitlesEnabled)
}

func TestBillingRoutes(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodPost, "/subscriptions/checkout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://checkout.test/s"}`, rec.Body.String())

	ts.billing.err = service.ErrBillingDisabled
	rec = ts.do(http.MethodGet, "/subscriptions/portal", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = ts.do(http.MethodPost, "/subscriptions/webhook", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func TestHealthz(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(fakePinger{}, zerolog.Nop()).RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	mux = http.NewServeMux()
	NewHealthHandler(fakePinger{err: errors.New("down")}, zerolog.Nop()).RegisterRoutes(mux)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
