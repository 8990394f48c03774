package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/storage"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*model.User
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.users[username]; ok {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	f.nextID++
	u := &model.User{ID: f.nextID, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.users[username] = u
	return u, nil
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

type fakeLedger struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
	purges  int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{revoked: map[string]time.Time{}}
}

func (f *fakeLedger) RevokeToken(ctx context.Context, jti, username string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.revoked[jti]; !ok {
		f.revoked[jti] = expiresAt
	}
	return nil
}

func (f *fakeLedger) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[jti]
	return ok, nil
}

func (f *fakeLedger) PurgeRevokedTokens(ctx context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purges++
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for jti, exp := range f.revoked {
		if exp.Before(before) {
			delete(f.revoked, jti)
			n++
		}
	}
	return n, nil
}

type fakeBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{data: map[string][]byte{}}
}

func (f *fakeBlobs) Put(ctx context.Context, key, contentType string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.data[key]
	if !ok {
		return nil, storage.ErrBlobNotFound
	}
	return data, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeBlobs) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

type fakeImageRepo struct {
	nextID int64
	rows   map[int64]*model.Image
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{rows: map[int64]*model.Image{}}
}

func (f *fakeImageRepo) CreateImage(ctx context.Context, userID int64, name, storageKey string) (*model.Image, error) {
	f.nextID++
	img := &model.Image{ID: f.nextID, UserID: userID, Name: name, StorageKey: storageKey, CreatedAt: time.Now()}
	f.rows[img.ID] = img
	copied := *img
	return &copied, nil
}

func (f *fakeImageRepo) GetImage(ctx context.Context, userID, id int64) (*model.Image, error) {
	img, ok := f.rows[id]
	if !ok || img.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *img
	return &copied, nil
}

func (f *fakeImageRepo) ListImages(ctx context.Context, userID int64) ([]model.Image, error) {
	var out []model.Image
	for id := int64(1); id <= f.nextID; id++ {
		if img, ok := f.rows[id]; ok && img.UserID == userID {
			out = append(out, *img)
		}
	}
	return out, nil
}

func (f *fakeImageRepo) UpdateImage(ctx context.Context, img *model.Image) error {
	cur, ok := f.rows[img.ID]
	if !ok || cur.UserID != img.UserID {
		return pgx.ErrNoRows
	}
	copied := *img
	f.rows[img.ID] = &copied
	return nil
}

func (f *fakeImageRepo) DeleteImage(ctx context.Context, userID, id int64) (*model.Image, error) {
	img, ok := f.rows[id]
	if !ok || img.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	delete(f.rows, id)
	return img, nil
}

type fakeTabularRepo struct {
	nextID int64
	rows   map[int64]*model.Tabular
}

func newFakeTabularRepo() *fakeTabularRepo {
	return &fakeTabularRepo{rows: map[int64]*model.Tabular{}}
}

func (f *fakeTabularRepo) CreateTabular(ctx context.Context, userID int64, name, storageKey string) (*model.Tabular, error) {
	f.nextID++
	tab := &model.Tabular{ID: f.nextID, UserID: userID, Name: name, StorageKey: storageKey, CreatedAt: time.Now()}
	f.rows[tab.ID] = tab
	copied := *tab
	return &copied, nil
}

func (f *fakeTabularRepo) GetTabular(ctx context.Context, userID, id int64) (*model.Tabular, error) {
	tab, ok := f.rows[id]
	if !ok || tab.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *tab
	return &copied, nil
}

func (f *fakeTabularRepo) ListTabular(ctx context.Context, userID int64) ([]model.Tabular, error) {
	var out []model.Tabular
	for id := int64(1); id <= f.nextID; id++ {
		if tab, ok := f.rows[id]; ok && tab.UserID == userID {
			out = append(out, *tab)
		}
	}
	return out, nil
}

func (f *fakeTabularRepo) UpdateTabular(ctx context.Context, tab *model.Tabular) error {
	cur, ok := f.rows[tab.ID]
	if !ok || cur.UserID != tab.UserID {
		return pgx.ErrNoRows
	}
	copied := *tab
	f.rows[tab.ID] = &copied
	return nil
}

func (f *fakeTabularRepo) DeleteTabular(ctx context.Context, userID, id int64) (*model.Tabular, error) {
	tab, ok := f.rows[id]
	if !ok || tab.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	delete(f.rows, id)
	return tab, nil
}

type fakeTextRepo struct {
	nextID  int64
	rows    map[int64]*model.Text
	vectors map[int64][]float32
}

func newFakeTextRepo() *fakeTextRepo {
	return &fakeTextRepo{rows: map[int64]*model.Text{}, vectors: map[int64][]float32{}}
}

func (f *fakeTextRepo) CreateText(ctx context.Context, userID int64, headline, body, modelName string, vector []float32) (*model.Text, error) {
	f.nextID++
	text := &model.Text{ID: f.nextID, UserID: userID, Headline: headline, Body: body, CreatedAt: time.Now()}
	if len(vector) > 0 {
		text.Model = &modelName
		f.vectors[text.ID] = vector
	}
	f.rows[text.ID] = text
	copied := *text
	return &copied, nil
}

func (f *fakeTextRepo) GetText(ctx context.Context, userID, id int64) (*model.Text, error) {
	text, ok := f.rows[id]
	if !ok || text.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *text
	return &copied, nil
}

func (f *fakeTextRepo) ListTexts(ctx context.Context, userID int64) ([]model.Text, error) {
	var out []model.Text
	for id := int64(1); id <= f.nextID; id++ {
		if text, ok := f.rows[id]; ok && text.UserID == userID {
			out = append(out, *text)
		}
	}
	return out, nil
}

func (f *fakeTextRepo) DeleteText(ctx context.Context, userID, id int64) error {
	text, ok := f.rows[id]
	if !ok || text.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	delete(f.vectors, id)
	return nil
}

// SimilarTexts ranks by absolute difference of the first vector component.
func (f *fakeTextRepo) SimilarTexts(ctx context.Context, userID, id int64, limit int) ([]model.SimilarTextResponse, error) {
	src, ok := f.vectors[id]
	if !ok {
		return nil, nil
	}
	var out []model.SimilarTextResponse
	for otherID := int64(1); otherID <= f.nextID; otherID++ {
		text, ok := f.rows[otherID]
		vec, hasVec := f.vectors[otherID]
		if !ok || !hasVec || otherID == id || text.UserID != userID {
			continue
		}
		d := float64(vec[0] - src[0])
		if d < 0 {
			d = -d
		}
		out = append(out, model.SimilarTextResponse{ID: otherID, Headline: text.Headline, Distance: d})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func pngBytes(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
