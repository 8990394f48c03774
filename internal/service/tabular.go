package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/analytica/backend/internal/analysis"
	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/storage"
)

const csvContentType = "text/csv; charset=utf-8"

type TabularRepo interface {
	CreateTabular(ctx context.Context, userID int64, name, storageKey string) (*model.Tabular, error)
	GetTabular(ctx context.Context, userID, id int64) (*model.Tabular, error)
	ListTabular(ctx context.Context, userID int64) ([]model.Tabular, error)
	UpdateTabular(ctx context.Context, tab *model.Tabular) error
	DeleteTabular(ctx context.Context, userID, id int64) (*model.Tabular, error)
}

type TabularService struct {
	repo   TabularRepo
	blobs  storage.BlobStore
	logger *zap.Logger
}

func NewTabularService(repo TabularRepo, blobs storage.BlobStore, logger *zap.Logger) *TabularService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TabularService{repo: repo, blobs: blobs, logger: logger}
}

func (s *TabularService) Create(ctx context.Context, user *model.AuthUser, name string, data []byte) (*model.Tabular, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: missing tabular name", ErrInvalidInput)
	}

	key, err := s.putCSV(ctx, user.ID, data)
	if err != nil {
		return nil, err
	}

	tab, err := s.repo.CreateTabular(ctx, user.ID, name, key)
	if err != nil {
		dropBlob(ctx, s.blobs, key, s.logger)
		return nil, storageErr(err)
	}
	return tab, nil
}

// Update replaces the name and/or the CSV payload. data is nil when no file was sent.
func (s *TabularService) Update(ctx context.Context, user *model.AuthUser, id int64, name *string, data []byte) (*model.TabularResponse, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	tab, err := s.repo.GetTabular(ctx, user.ID, id)
	if err != nil {
		return nil, lookupErr(err)
	}

	oldKey := ""
	if data != nil {
		key, err := s.putCSV(ctx, user.ID, data)
		if err != nil {
			return nil, err
		}
		oldKey, tab.StorageKey = tab.StorageKey, key
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		tab.Name = strings.TrimSpace(*name)
	}

	if err := s.repo.UpdateTabular(ctx, tab); err != nil {
		if oldKey != "" {
			dropBlob(ctx, s.blobs, tab.StorageKey, s.logger)
		}
		return nil, lookupErr(err)
	}
	dropBlob(ctx, s.blobs, oldKey, s.logger)

	stored, err := loadBlob(ctx, s.blobs, tab.StorageKey, s.logger)
	if err != nil {
		return nil, err
	}
	return &model.TabularResponse{
		ID:          tab.ID,
		TabularName: tab.Name,
		TabularData: base64.StdEncoding.EncodeToString(stored),
		CreatedAt:   tab.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (s *TabularService) List(ctx context.Context, user *model.AuthUser) ([]model.TabularResponse, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	items, err := s.repo.ListTabular(ctx, user.ID)
	if err != nil {
		return nil, storageErr(err)
	}

	out := make([]model.TabularResponse, 0, len(items))
	for _, tab := range items {
		data, err := loadBlob(ctx, s.blobs, tab.StorageKey, s.logger)
		if err != nil {
			return nil, err
		}
		out = append(out, model.TabularResponse{
			ID:          tab.ID,
			TabularName: tab.Name,
			TabularData: string(data),
		})
	}
	return out, nil
}

// Analyze returns descriptive statistics and outlier rows of one CSV.
// A stored payload that no longer parses yields analysis.ErrInvalidCSV.
func (s *TabularService) Analyze(ctx context.Context, user *model.AuthUser, id int64) (*model.TabularAnalysisResponse, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	tab, err := s.repo.GetTabular(ctx, user.ID, id)
	if err != nil {
		return nil, lookupErr(err)
	}
	data, err := loadBlob(ctx, s.blobs, tab.StorageKey, s.logger)
	if err != nil {
		return nil, err
	}
	table, err := analysis.ParseCSV(data)
	if err != nil {
		return nil, err
	}
	res := analysis.Describe(table)
	return &res, nil
}

func (s *TabularService) Delete(ctx context.Context, user *model.AuthUser, id int64) error {
	if err := requireUser(user); err != nil {
		return err
	}
	tab, err := s.repo.DeleteTabular(ctx, user.ID, id)
	if err != nil {
		return lookupErr(err)
	}
	dropBlob(ctx, s.blobs, tab.StorageKey, s.logger)
	return nil
}

// putCSV validates and normalises the upload before storing it.
func (s *TabularService) putCSV(ctx context.Context, userID int64, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: no tabular file part", ErrInvalidInput)
	}
	table, err := analysis.ParseCSV(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	normalised, err := table.Encode()
	if err != nil {
		return "", err
	}

	key := storage.NewKey(userID, "tabular")
	if err := s.blobs.Put(ctx, key, csvContentType, normalised); err != nil {
		return "", storageErr(err)
	}
	return key, nil
}
