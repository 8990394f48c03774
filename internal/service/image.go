package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/analytica/backend/internal/analysis"
	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/storage"
)

type ImageRepo interface {
	CreateImage(ctx context.Context, userID int64, name, storageKey string) (*model.Image, error)
	GetImage(ctx context.Context, userID, id int64) (*model.Image, error)
	ListImages(ctx context.Context, userID int64) ([]model.Image, error)
	UpdateImage(ctx context.Context, img *model.Image) error
	DeleteImage(ctx context.Context, userID, id int64) (*model.Image, error)
}

// ImageUpload is an uploaded image file. Data is nil when no file was sent.
type ImageUpload struct {
	Filename string
	Data     []byte
}

type ImageService struct {
	repo   ImageRepo
	blobs  storage.BlobStore
	logger *zap.Logger
}

func NewImageService(repo ImageRepo, blobs storage.BlobStore, logger *zap.Logger) *ImageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageService{repo: repo, blobs: blobs, logger: logger}
}

func (s *ImageService) Create(ctx context.Context, user *model.AuthUser, name string, upload ImageUpload) (*model.Image, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: missing image name", ErrInvalidInput)
	}
	if err := validateImage(upload); err != nil {
		return nil, err
	}

	key, err := s.putBlob(ctx, user.ID, upload.Data)
	if err != nil {
		return nil, err
	}

	img, err := s.repo.CreateImage(ctx, user.ID, name, key)
	if err != nil {
		dropBlob(ctx, s.blobs, key, s.logger)
		return nil, storageErr(err)
	}
	return img, nil
}

func (s *ImageService) Update(ctx context.Context, user *model.AuthUser, id int64, name *string, upload *ImageUpload) (*model.ImageResponse, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	img, err := s.repo.GetImage(ctx, user.ID, id)
	if err != nil {
		return nil, lookupErr(err)
	}

	oldKey := ""
	var data []byte
	if upload != nil {
		if err := validateImage(*upload); err != nil {
			return nil, err
		}
		key, err := s.putBlob(ctx, user.ID, upload.Data)
		if err != nil {
			return nil, err
		}
		oldKey, img.StorageKey, data = img.StorageKey, key, upload.Data
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		img.Name = strings.TrimSpace(*name)
	}

	if err := s.repo.UpdateImage(ctx, img); err != nil {
		if oldKey != "" {
			dropBlob(ctx, s.blobs, img.StorageKey, s.logger)
		}
		return nil, lookupErr(err)
	}
	dropBlob(ctx, s.blobs, oldKey, s.logger)

	if data == nil {
		data, err = loadBlob(ctx, s.blobs, img.StorageKey, s.logger)
		if err != nil {
			return nil, err
		}
	}
	return &model.ImageResponse{
		ID:        img.ID,
		ImageName: img.Name,
		ImageData: base64.StdEncoding.EncodeToString(data),
	}, nil
}

// List returns the caller's images re-encoded as base64 PNG.
func (s *ImageService) List(ctx context.Context, user *model.AuthUser) ([]model.ImageResponse, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	images, err := s.repo.ListImages(ctx, user.ID)
	if err != nil {
		return nil, storageErr(err)
	}

	out := make([]model.ImageResponse, 0, len(images))
	for _, img := range images {
		data, err := loadBlob(ctx, s.blobs, img.StorageKey, s.logger)
		if err != nil {
			return nil, err
		}
		if decoded, err := analysis.DecodeImage(data); err == nil {
			if encoded, err := analysis.EncodePNG(decoded); err == nil {
				data = encoded
			}
		} else {
			s.logger.Warn("stored image no longer decodes", zap.Int64("image_id", img.ID), zap.Error(err))
		}
		out = append(out, model.ImageResponse{
			ID:        img.ID,
			ImageName: img.Name,
			ImageData: base64.StdEncoding.EncodeToString(data),
		})
	}
	return out, nil
}

// Analyze computes the colour histogram and threshold mask of one image.
func (s *ImageService) Analyze(ctx context.Context, user *model.AuthUser, id int64) (*model.ImageAnalysisResponse, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	img, err := s.repo.GetImage(ctx, user.ID, id)
	if err != nil {
		return nil, lookupErr(err)
	}
	data, err := loadBlob(ctx, s.blobs, img.StorageKey, s.logger)
	if err != nil {
		return nil, err
	}
	decoded, err := analysis.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return &model.ImageAnalysisResponse{
		Histogram:        analysis.ColorHistogram(decoded),
		SegmentationMask: analysis.ThresholdMask(decoded),
	}, nil
}

func (s *ImageService) Delete(ctx context.Context, user *model.AuthUser, id int64) error {
	if err := requireUser(user); err != nil {
		return err
	}
	img, err := s.repo.DeleteImage(ctx, user.ID, id)
	if err != nil {
		return lookupErr(err)
	}
	dropBlob(ctx, s.blobs, img.StorageKey, s.logger)
	return nil
}

func (s *ImageService) putBlob(ctx context.Context, userID int64, data []byte) (string, error) {
	key := storage.NewKey(userID, "image")
	if err := s.blobs.Put(ctx, key, http.DetectContentType(data), data); err != nil {
		return "", storageErr(err)
	}
	return key, nil
}

func validateImage(upload ImageUpload) error {
	if len(upload.Data) == 0 {
		return fmt.Errorf("%w: no image file part", ErrInvalidInput)
	}
	if !analysis.AllowedImageFile(upload.Filename) {
		return fmt.Errorf("%w: unsupported image extension", ErrInvalidInput)
	}
	if _, err := analysis.DecodeImage(upload.Data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
