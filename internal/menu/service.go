package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrStorageDisabled is returned by UploadImage when no object storage is configured.
var ErrStorageDisabled = errors.New("image storage is disabled")

type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type Service struct {
	repo    Repository
	storage Storage
}

// NewService builds the catalog service. storage may be nil.
func NewService(repo Repository, storage Storage) *Service {
	return &Service{repo: repo, storage: storage}
}

// --------------------------------------------------
// Storefront
// --------------------------------------------------
func (s *Service) ListAvailable(ctx context.Context, filter Filter) ([]MenuItem, error) {
	return s.repo.ListAvailable(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (*MenuItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// --------------------------------------------------
// ADMIN
// --------------------------------------------------
func (s *Service) Create(ctx context.Context, item MenuItem) (*MenuItem, error) {
	item.ID = uuid.New().String()
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.TrimSpace(item.Category)

	if err := Validate(&item); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) Update(ctx context.Context, id string, u Update) (*MenuItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Apply(item)
	if err := Validate(item); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// UploadImage stores a dish photo and points the item at it.
func (s *Service) UploadImage(
	ctx context.Context,
	id string,
	body io.Reader,
	filename string,
) (string, error) {

	if s.storage == nil {
		return "", ErrStorageDisabled
	}

	contentType, err := ValidateImageExtension(filename)
	if err != nil {
		return "", err
	}

	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}

	key := fmt.Sprintf(
		"menu-items/%s/%s%s",
		id,
		uuid.New().String(),
		strings.ToLower(filepath.Ext(filename)),
	)

	url, err := s.storage.Upload(ctx, key, body, contentType)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	if err := s.repo.SetImageURL(ctx, id, url); err != nil {
		return "", err
	}
	return url, nil
}
