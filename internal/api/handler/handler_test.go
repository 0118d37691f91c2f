package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"skillswap/backend/internal/ads"
	"skillswap/backend/internal/api/handler"
	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/auth"
	"skillswap/backend/internal/chathub"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore implements auth.Store and ads.Store in memory.
type memoryStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	codes    map[string]string
	requests map[string]int64
	revoked  map[string]bool
	ads      map[string]*models.Ad
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    map[string]*models.User{},
		codes:    map[string]string{},
		requests: map[string]int64{},
		revoked:  map[string]bool{},
		ads:      map[string]*models.Ad{},
	}
}

func (s *memoryStore) addUser(role models.UserRole, active bool) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: uuid.NewString(), Phone: "+7900" + uuid.NewString()[:7], Role: role, IsActive: active}
	s.users[u.ID] = u
	return u
}

func (s *memoryStore) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *memoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *memoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = uuid.NewString()
	s.users[user.ID] = user
	return nil
}

func (s *memoryStore) IncrCodeRequests(_ context.Context, phone string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[phone]++
	return s.requests[phone], nil
}

func (s *memoryStore) DecrCodeRequests(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[phone]--
	return nil
}

func (s *memoryStore) SaveCode(_ context.Context, phone, code string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = code
	return nil
}

func (s *memoryStore) GetCode(_ context.Context, phone string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone], nil
}

func (s *memoryStore) DeleteCode(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, phone)
	return nil
}

func (s *memoryStore) RevokeToken(_ context.Context, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = true
	return nil
}

func (s *memoryStore) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[jti], nil
}

func (s *memoryStore) CountUserAds(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, ad := range s.ads {
		if ad.AuthorID == userID {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) CreateAd(_ context.Context, ad *models.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ad.ID = uuid.NewString()
	s.ads[ad.ID] = ad
	return nil
}

func (s *memoryStore) GetAd(_ context.Context, id string) (*models.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ad, ok := s.ads[id]; ok {
		return ad, nil
	}
	return nil, apperrors.ErrAdNotFound
}

func (s *memoryStore) UpdateAd(_ context.Context, ad *models.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ads[ad.ID] = ad
	return nil
}

func (s *memoryStore) DeleteAd(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ads, id)
	return nil
}

func (s *memoryStore) ListAds(_ context.Context, _ models.AdFilter) ([]models.Ad, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Ad
	for _, ad := range s.ads {
		out = append(out, *ad)
	}
	return out, int64(len(out)), nil
}

type testServer struct {
	store  *memoryStore
	tokens *auth.TokenManager
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemoryStore()
	tokens := auth.NewTokenManager("handler-test-secret", 15*time.Minute, time.Hour)
	authSvc := auth.NewService(store, tokens, auth.MockProvider{}, auth.Options{
		CodeExpiry:   5 * time.Minute,
		RequestLimit: 5,
		Window:       time.Hour,
		Debug:        true,
	})

	h := &handler.Handler{
		Auth:  authSvc,
		Ads:   ads.NewService(store),
		Relay: chathub.NewRelay(chathub.NewRegistry()),
	}
	router, err := handler.NewRouter(h, []string{"http://localhost:3000"})
	require.NoError(t, err)

	return &testServer{store: store, tokens: tokens, router: router}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := s.tokens.IssueAccess(u)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestAuthMiddleware_RejectsMissingAndInvalidTokens(t *testing.T) {
	srv := newTestServer(t)

	missing := srv.do(t, http.MethodGet, "/api/v1/ads/my", nil, "")
	invalid := srv.do(t, http.MethodGet, "/api/v1/ads/my", nil, "not-a-jwt")

	assert.Equal(t, http.StatusUnauthorized, missing.Code)
	assert.Equal(t, "unauthorized", decode(t, missing)["error"])
	assert.Equal(t, http.StatusUnauthorized, invalid.Code)
	assert.Equal(t, "invalid_token", decode(t, invalid)["error"])
}

func TestAuthMiddleware_RejectsBannedUser(t *testing.T) {
	srv := newTestServer(t)
	banned := srv.store.addUser(models.RoleStudent, false)

	w := srv.do(t, http.MethodGet, "/api/v1/ads/my", nil, srv.tokenFor(t, banned))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "user_inactive", decode(t, w)["error"])
}

func TestRequestAndVerifyCode(t *testing.T) {
	srv := newTestServer(t)

	// Act: request a code
	w := srv.do(t, http.MethodPost, "/api/v1/auth/request-code", map[string]string{"phone": "8 (900) 123-45-67"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	sent := decode(t, w)
	code, _ := sent["debug_code"].(string)
	require.Len(t, code, 6)
	assert.EqualValues(t, 300, sent["expires_in"])

	// Act: verify it
	w = srv.do(t, http.MethodPost, "/api/v1/auth/verify-code", map[string]string{"phone": "+79001234567", "code": code}, "")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, true, body["is_new_user"])

	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "refresh_token=")
	assert.Contains(t, cookie, "Path=/api/v1/auth")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Lax")
}

func TestVerifyCode_WrongCode(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/v1/auth/request-code", map[string]string{"phone": "+79001234567"}, "")
	wrong := "000000"
	if code, _ := srv.store.GetCode(context.Background(), "+79001234567"); code == wrong {
		wrong = "111111"
	}

	w := srv.do(t, http.MethodPost, "/api/v1/auth/verify-code", map[string]string{"phone": "+79001234567", "code": wrong}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_code", decode(t, w)["error"])
}

func TestVerifyCode_MalformedCode(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/verify-code", map[string]string{"phone": "+79001234567", "code": "12ab"}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", decode(t, w)["error"])
}

func TestRequestCode_InvalidPhone(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/request-code", map[string]string{"phone": "12ab"}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_phone", decode(t, w)["error"])
}

func TestCreateAd(t *testing.T) {
	srv := newTestServer(t)
	author := srv.store.addUser(models.RoleStudent, true)

	w := srv.do(t, http.MethodPost, "/api/v1/ads", map[string]string{
		"category":    "programming",
		"title":       "Go tutoring",
		"description": "Concurrency patterns and testing",
		"level":       "beginner",
		"format":      "online",
	}, srv.tokenFor(t, author))

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Go tutoring", body["title"])
	assert.Equal(t, author.ID, body["author_id"])
}

func TestCreateAd_ValidationDetails(t *testing.T) {
	srv := newTestServer(t)
	author := srv.store.addUser(models.RoleStudent, true)

	w := srv.do(t, http.MethodPost, "/api/v1/ads", map[string]string{
		"category":    "cooking",
		"title":       "Go",
		"description": "Concurrency patterns and testing",
		"level":       "beginner",
		"format":      "online",
	}, srv.tokenFor(t, author))

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation_failed", body["error"])
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, details, "category")
	assert.Contains(t, details, "title")
	assert.NotContains(t, details, "level")
}

func TestListAds_RejectsUnknownSort(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/ads?sort=random", nil, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAd_NotOwner(t *testing.T) {
	srv := newTestServer(t)
	owner := srv.store.addUser(models.RoleStudent, true)
	other := srv.store.addUser(models.RoleStudent, true)
	ad := &models.Ad{AuthorID: owner.ID, Title: "Guitar basics", Category: models.AdCategories[0]}
	require.NoError(t, srv.store.CreateAd(context.Background(), ad))

	w := srv.do(t, http.MethodDelete, "/api/v1/ads/"+ad.ID, nil, srv.tokenFor(t, other))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["error"])
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	srv := newTestServer(t)
	student := srv.store.addUser(models.RoleStudent, true)

	w := srv.do(t, http.MethodGet, "/api/v1/admin/stats", nil, srv.tokenFor(t, student))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "admin_required", decode(t, w)["error"])
}

func TestCORS_Preflight(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/ads", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestChatSocket_InvalidTokenClosesWithPolicyViolation(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat/1?token=bogus"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, _, err = conn.ReadMessage()

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	assert.Equal(t, "invalid token", closeErr.Text)
}
