package notes

import (
	"context"
	"fmt"

	"github.com/avelichko/notekeeper/internal/common"
	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID string) ([]Note, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Create(ctx context.Context, userID string, draft Draft) (*Note, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}

	note := &Note{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      draft.Title,
		Content:    draft.Content,
		Priority:   draft.Priority,
		ReminderAt: draft.ReminderAt,
	}

	created, err := s.repo.Create(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	return created, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, draft Draft) (*Note, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: note id is required", common.ErrValidation)
	}
	if err := draft.validate(); err != nil {
		return nil, err
	}

	note := &Note{
		ID:         id,
		UserID:     userID,
		Title:      draft.Title,
		Content:    draft.Content,
		Priority:   draft.Priority,
		ReminderAt: draft.ReminderAt,
	}

	return s.repo.Update(ctx, note)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return fmt.Errorf("%w: note id is required", common.ErrValidation)
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) TogglePin(ctx context.Context, userID, id string) (*Note, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: note id is required", common.ErrValidation)
	}
	return s.repo.TogglePin(ctx, userID, id)
}
