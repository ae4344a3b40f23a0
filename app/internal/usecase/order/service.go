package order

import (
	"context"

	"go.uber.org/zap"

	domorder "example.com/storefront/app/internal/domain/order"
)

type Service struct {
	repo   domorder.Repository
	logger *zap.Logger
}

func NewService(repo domorder.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]*domorder.Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	if !status.IsValid() {
		return nil, domorder.ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, domorder.ErrStatusTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order status changed",
		zap.Int64("order_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)))
	return updated, nil
}
