package contact

import (
	"context"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (int64, error) {
	id, err := s.repo.Create(ctx, in)
	return id, apperr.Storage("contact: create", err)
}

func (s *Service) ListAll(ctx context.Context) ([]Submission, error) {
	out, err := s.repo.ListAll(ctx)
	return out, apperr.Storage("contact: list", err)
}

// View returns a submission for the admin and marks it read on first view.
func (s *Service) View(ctx context.Context, id int64) (Submission, error) {
	sub, err := s.repo.Get(ctx, id)
	if err != nil {
		return Submission{}, apperr.Storage("contact: get", err)
	}
	if !sub.IsRead {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			return Submission{}, apperr.Storage("contact: mark read", err)
		}
		sub.IsRead = true
	}
	return sub, nil
}

func (s *Service) MarkRead(ctx context.Context, id int64) error {
	return apperr.Storage("contact: mark read", s.repo.MarkRead(ctx, id))
}

func (s *Service) CountUnread(ctx context.Context) (int, error) {
	n, err := s.repo.CountUnread(ctx)
	return n, apperr.Storage("contact: count unread", err)
}
