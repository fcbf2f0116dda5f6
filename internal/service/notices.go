package service

import (
	"context"
	"strings"
	"time"

	"smartgarden/internal/apperr"
	"smartgarden/internal/logger"
	"smartgarden/internal/models"
	"smartgarden/internal/repository"

	"github.com/google/uuid"
)

// NoticeService keeps the transient, dismissible messages shown to the operator.
type NoticeService struct {
	repo repository.NoticeRepo
	log  *logger.Logger
}

func NewNoticeService(repo repository.NoticeRepo, log *logger.Logger) *NoticeService {
	return &NoticeService{repo: repo, log: logger.OrNop(log)}
}

// ListNotices returns active notices, newest first.
func (s *NoticeService) ListNotices(ctx context.Context) ([]models.Notice, error) {
	out, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "list notices", err)
	}
	return out, nil
}

func (s *NoticeService) DismissNotice(ctx context.Context, id string) error {
	const op = "dismiss notice"
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.New(apperr.ValidationFailure, op, "id is required")
	}
	found, err := s.repo.Dismiss(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, op, err)
	}
	if !found {
		return apperr.Newf(apperr.NotFound, op, "notice %s not found", id)
	}
	return nil
}

func (s *NoticeService) RaiseNotice(ctx context.Context, kind, message string) (models.Notice, error) {
	n := models.Notice{
		ID:       uuid.NewString(),
		RaisedAt: time.Now().UTC(),
		Kind:     kind,
		Message:  message,
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return models.Notice{}, apperr.Wrap(apperr.Internal, "raise notice", err)
	}
	s.log.Infow("notice_raised", "id", n.ID, "kind", kind)
	return n, nil
}

// Sweep deletes notices raised more than ttl ago.
func (s *NoticeService) Sweep(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.repo.DeleteRaisedBefore(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "sweep notices", err)
	}
	return n, nil
}
