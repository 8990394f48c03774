package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analytica/backend/internal/model"
)

var (
	alice = &model.AuthUser{ID: 1, Username: "alice"}
	bob   = &model.AuthUser{ID: 2, Username: "bob"}
)

func newTestImageService() (*ImageService, *fakeImageRepo, *fakeBlobs) {
	repo := newFakeImageRepo()
	blobs := newFakeBlobs()
	return NewImageService(repo, blobs, nil), repo, blobs
}

func TestImageCreateAndList(t *testing.T) {
	svc, _, blobs := newTestImageService()
	ctx := context.Background()

	img, err := svc.Create(ctx, alice, "cat", ImageUpload{Filename: "cat.png", Data: pngBytes(2, 2)})
	require.NoError(t, err)
	assert.Equal(t, "cat", img.Name)
	assert.Equal(t, 1, blobs.len())

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cat", list[0].ImageName)
	_, err = base64.StdEncoding.DecodeString(list[0].ImageData)
	assert.NoError(t, err)

	list, err = svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImageCreateValidation(t *testing.T) {
	svc, _, blobs := newTestImageService()
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, "", ImageUpload{Filename: "a.png", Data: pngBytes(1, 1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, alice, "doc", ImageUpload{Filename: "a.pdf", Data: pngBytes(1, 1)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, alice, "junk", ImageUpload{Filename: "a.png", Data: []byte("not an image")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, alice, "empty", ImageUpload{Filename: "a.png"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, nil, "cat", ImageUpload{Filename: "a.png", Data: pngBytes(1, 1)})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Zero(t, blobs.len())
}

func TestImageUpdateReplacesBlob(t *testing.T) {
	svc, repo, blobs := newTestImageService()
	ctx := context.Background()

	img, err := svc.Create(ctx, alice, "cat", ImageUpload{Filename: "cat.png", Data: pngBytes(1, 1)})
	require.NoError(t, err)
	oldKey := img.StorageKey

	name := "bigger cat"
	newData := pngBytes(3, 3)
	res, err := svc.Update(ctx, alice, img.ID, &name, &ImageUpload{Filename: "cat2.png", Data: newData})
	require.NoError(t, err)
	assert.Equal(t, "bigger cat", res.ImageName)
	assert.Equal(t, base64.StdEncoding.EncodeToString(newData), res.ImageData)

	assert.NotEqual(t, oldKey, repo.rows[img.ID].StorageKey)
	assert.Equal(t, 1, blobs.len())
}

func TestImageUpdateNameOnly(t *testing.T) {
	svc, _, _ := newTestImageService()
	ctx := context.Background()
	data := pngBytes(1, 1)

	img, err := svc.Create(ctx, alice, "cat", ImageUpload{Filename: "cat.png", Data: data})
	require.NoError(t, err)

	name := "renamed"
	res, err := svc.Update(ctx, alice, img.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "renamed", res.ImageName)
	assert.Equal(t, base64.StdEncoding.EncodeToString(data), res.ImageData)
}

func TestImageIsScopedToOwner(t *testing.T) {
	svc, _, _ := newTestImageService()
	ctx := context.Background()

	img, err := svc.Create(ctx, alice, "cat", ImageUpload{Filename: "cat.png", Data: pngBytes(1, 1)})
	require.NoError(t, err)

	_, err = svc.Analyze(ctx, bob, img.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	name := "stolen"
	_, err = svc.Update(ctx, bob, img.ID, &name, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, bob, img.ID), ErrNotFound)

	_, err = svc.Analyze(ctx, alice, img.ID)
	assert.NoError(t, err)
}

func TestImageAnalyze(t *testing.T) {
	svc, _, _ := newTestImageService()
	ctx := context.Background()

	img, err := svc.Create(ctx, alice, "red", ImageUpload{Filename: "red.png", Data: pngBytes(2, 1)})
	require.NoError(t, err)

	res, err := svc.Analyze(ctx, alice, img.ID)
	require.NoError(t, err)
	assert.Len(t, res.Histogram, 512)

	var total float64
	for _, v := range res.Histogram {
		total += v
	}
	assert.Equal(t, float64(2), total)

	require.Len(t, res.SegmentationMask, 1)
	require.Len(t, res.SegmentationMask[0], 2)
	assert.Equal(t, [3]uint8{0, 0, 255}, res.SegmentationMask[0][0])
}

func TestImageMissingPayload(t *testing.T) {
	svc, repo, blobs := newTestImageService()
	ctx := context.Background()

	img, err := svc.Create(ctx, alice, "red", ImageUpload{Filename: "red.png", Data: pngBytes(2, 1)})
	require.NoError(t, err)
	delete(blobs.data, repo.rows[img.ID].StorageKey)

	_, err = svc.Analyze(ctx, alice, img.ID)
	assert.ErrorIs(t, err, ErrPayloadMissing)
}

func TestImageDeleteDropsBlob(t *testing.T) {
	svc, _, blobs := newTestImageService()
	ctx := context.Background()

	img, err := svc.Create(ctx, alice, "cat", ImageUpload{Filename: "cat.png", Data: pngBytes(1, 1)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice, img.ID))
	assert.Zero(t, blobs.len())
	assert.ErrorIs(t, svc.Delete(ctx, alice, img.ID), ErrNotFound)
}
