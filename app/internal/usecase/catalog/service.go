package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	dom "example.com/storefront/app/internal/domain/catalog"
)

var ErrUploadsDisabled = errors.New("image uploads are not configured")

// Cache is an optional read-through cache. Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, id int64) (*dom.Entry, error)
	Set(ctx context.Context, e *dom.Entry) error
	Delete(ctx context.Context, id int64) error
}

type ImageUploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

type Service struct {
	repo     dom.Repository
	cache    Cache
	uploader ImageUploader
	logger   *zap.Logger
}

// NewService accepts a nil cache, uploader or logger.
func NewService(repo dom.Repository, cache Cache, uploader ImageUploader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, e *dom.Entry) (*dom.Entry, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Kind == "" {
		e.Kind = dom.KindProduct
	}
	if err := dom.ValidateDraft(e); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) Update(ctx context.Context, id int64, patch dom.Patch) (*dom.Entry, error) {
	existed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(existed)
	if err := dom.ValidateDraft(existed); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, existed)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Entry, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("catalog cache read failed", zap.Int64("entry_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, e); err != nil {
			s.logger.Warn("catalog cache write failed", zap.Int64("entry_id", id), zap.Error(err))
		}
	}
	return e, nil
}

// GetActive returns the entry only if the storefront may sell it.
func (s *Service) GetActive(ctx context.Context, id int64) (*dom.Entry, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsActive {
		return nil, dom.ErrEntryNotFound
	}
	if err := dom.Validate(e); err != nil {
		s.logger.Warn("malformed catalog entry hidden", zap.Int64("entry_id", id), zap.Error(err))
		return nil, dom.ErrEntryNotFound
	}
	return e, nil
}

// Index loads the live entries for ids. Inactive and malformed entries are
// left out, so carts drop them on reconcile.
func (s *Service) Index(ctx context.Context, ids []int64) (dom.Index, error) {
	if len(ids) == 0 {
		return dom.Index{}, nil
	}
	entries, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load catalog entries: %w", err)
	}
	for _, e := range entries {
		if err := dom.Validate(e); err != nil {
			s.logger.Warn("malformed catalog entry ignored", zap.Int64("entry_id", e.ID), zap.Error(err))
		}
	}
	return dom.NewIndex(entries), nil
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Entry, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if !filter.OnlyActive {
		return entries, nil
	}

	valid := make([]*dom.Entry, 0, len(entries))
	for _, e := range entries {
		if err := dom.Validate(e); err != nil {
			s.logger.Warn("malformed catalog entry hidden", zap.Int64("entry_id", e.ID), zap.Error(err))
			continue
		}
		valid = append(valid, e)
	}
	return valid, nil
}

func (s *Service) UploadImage(ctx context.Context, id int64, r io.Reader) (*dom.Entry, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	existed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("catalog_%d_%d", id, time.Now().UnixNano())
	url, err := s.uploader.Upload(ctx, name, r)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	existed.ImageURL = url
	updated, err := s.repo.Update(ctx, existed)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Int64("entry_id", id), zap.Error(err))
	}
}
