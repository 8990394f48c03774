package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/analytica/backend/internal/config"
	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/service"
	"github.com/analytica/backend/internal/storage"
)

const testSecret = "handler-test-secret"

// memStore backs every repository interface the services need.
type memStore struct {
	mu      sync.Mutex
	failing bool
	nextID  int64
	users   map[string]*model.User
	revoked map[string]time.Time
	images  map[int64]*model.Image
	tabular map[int64]*model.Tabular
	texts   map[int64]*model.Text
	blobs   map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*model.User{},
		revoked: map[string]time.Time{},
		images:  map[int64]*model.Image{},
		tabular: map[int64]*model.Tabular{},
		texts:   map[int64]*model.Text{},
		blobs:   map[string][]byte{},
	}
}

var errStoreDown = errors.New("store down")

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}
	if _, ok := m.users[username]; ok {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	u := &model.User{ID: m.id(), Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.users[username] = u
	return u, nil
}

func (m *memStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}
	u, ok := m.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memStore) RevokeToken(ctx context.Context, jti, username string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStoreDown
	}
	m.revoked[jti] = expiresAt
	return nil
}

func (m *memStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return false, errStoreDown
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

func (m *memStore) PurgeRevokedTokens(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (m *memStore) CreateImage(ctx context.Context, userID int64, name, storageKey string) (*model.Image, error) {
	img := &model.Image{ID: m.id(), UserID: userID, Name: name, StorageKey: storageKey, CreatedAt: time.Now()}
	m.images[img.ID] = img
	return img, nil
}

func (m *memStore) GetImage(ctx context.Context, userID, id int64) (*model.Image, error) {
	img, ok := m.images[id]
	if !ok || img.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *img
	return &copied, nil
}

func (m *memStore) ListImages(ctx context.Context, userID int64) ([]model.Image, error) {
	var out []model.Image
	for id := int64(1); id <= m.nextID; id++ {
		if img, ok := m.images[id]; ok && img.UserID == userID {
			out = append(out, *img)
		}
	}
	return out, nil
}

func (m *memStore) UpdateImage(ctx context.Context, img *model.Image) error {
	if cur, ok := m.images[img.ID]; !ok || cur.UserID != img.UserID {
		return pgx.ErrNoRows
	}
	copied := *img
	m.images[img.ID] = &copied
	return nil
}

func (m *memStore) DeleteImage(ctx context.Context, userID, id int64) (*model.Image, error) {
	img, ok := m.images[id]
	if !ok || img.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	delete(m.images, id)
	return img, nil
}

func (m *memStore) CreateTabular(ctx context.Context, userID int64, name, storageKey string) (*model.Tabular, error) {
	tab := &model.Tabular{ID: m.id(), UserID: userID, Name: name, StorageKey: storageKey, CreatedAt: time.Now()}
	m.tabular[tab.ID] = tab
	return tab, nil
}

func (m *memStore) GetTabular(ctx context.Context, userID, id int64) (*model.Tabular, error) {
	tab, ok := m.tabular[id]
	if !ok || tab.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *tab
	return &copied, nil
}

func (m *memStore) ListTabular(ctx context.Context, userID int64) ([]model.Tabular, error) {
	var out []model.Tabular
	for id := int64(1); id <= m.nextID; id++ {
		if tab, ok := m.tabular[id]; ok && tab.UserID == userID {
			out = append(out, *tab)
		}
	}
	return out, nil
}

func (m *memStore) UpdateTabular(ctx context.Context, tab *model.Tabular) error {
	if cur, ok := m.tabular[tab.ID]; !ok || cur.UserID != tab.UserID {
		return pgx.ErrNoRows
	}
	copied := *tab
	m.tabular[tab.ID] = &copied
	return nil
}

func (m *memStore) DeleteTabular(ctx context.Context, userID, id int64) (*model.Tabular, error) {
	tab, ok := m.tabular[id]
	if !ok || tab.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	delete(m.tabular, id)
	return tab, nil
}

func (m *memStore) CreateText(ctx context.Context, userID int64, headline, body, modelName string, vector []float32) (*model.Text, error) {
	text := &model.Text{ID: m.id(), UserID: userID, Headline: headline, Body: body, CreatedAt: time.Now()}
	m.texts[text.ID] = text
	return text, nil
}

func (m *memStore) GetText(ctx context.Context, userID, id int64) (*model.Text, error) {
	text, ok := m.texts[id]
	if !ok || text.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return text, nil
}

func (m *memStore) ListTexts(ctx context.Context, userID int64) ([]model.Text, error) {
	var out []model.Text
	for id := int64(1); id <= m.nextID; id++ {
		if text, ok := m.texts[id]; ok && text.UserID == userID {
			out = append(out, *text)
		}
	}
	return out, nil
}

func (m *memStore) DeleteText(ctx context.Context, userID, id int64) error {
	text, ok := m.texts[id]
	if !ok || text.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(m.texts, id)
	return nil
}

func (m *memStore) SimilarTexts(ctx context.Context, userID, id int64, limit int) ([]model.SimilarTextResponse, error) {
	return nil, nil
}

type memBlobs struct {
	m *memStore
}

func (b memBlobs) Put(ctx context.Context, key, contentType string, data []byte) error {
	b.m.blobs[key] = data
	return nil
}

func (b memBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := b.m.blobs[key]
	if !ok {
		return nil, storage.ErrBlobNotFound
	}
	return data, nil
}

func (b memBlobs) Delete(ctx context.Context, key string) error {
	delete(b.m.blobs, key)
	return nil
}

type testServer struct {
	router *gin.Engine
	store  *memStore
	auth   *service.AuthService
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	auth, err := service.NewAuthService(store, store, config.AuthConfig{JWTSecret: testSecret, JWTAccessTTL: "1h"}, nil)
	require.NoError(t, err)

	blobs := memBlobs{m: store}
	router := NewRouter(RouterDeps{
		Auth:               auth,
		Images:             service.NewImageService(store, blobs, nil),
		Tabular:            service.NewTabularService(store, blobs, nil),
		Texts:              service.NewTextService(store, nil, nil, nil, nil),
		RateLimitPerMinute: rateLimit,
		MaxUploadBytes:     1 << 20,
	})
	return &testServer{router: router, store: store, auth: auth}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
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

func (s *testServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login registers the user and returns a fresh access token.
func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/user/register", "", model.AuthRequest{Username: username, Password: password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/user/login", "", model.AuthRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
