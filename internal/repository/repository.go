package repository

import (
	"context"
	"database/sql"
	"time"

	"smartgarden/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// ConfigRepo stores the single active ThresholdConfig row.
type ConfigRepo interface {
	Save(ctx context.Context, cfg models.ThresholdConfig) error
	Load(ctx context.Context) (models.ThresholdConfig, bool, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.GardenEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.GardenEvent, error)
}

type NoticeRepo interface {
	Insert(ctx context.Context, n models.Notice) error
	ListActive(ctx context.Context) ([]models.Notice, error)
	Dismiss(ctx context.Context, id string) (bool, error)
	DeleteRaisedBefore(ctx context.Context, t time.Time) (int64, error)
}

type Repository struct {
	ConfigRepo ConfigRepo
	EventRepo  EventRepo
	NoticeRepo NoticeRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ConfigRepo: NewConfigSQLite(db),
		EventRepo:  NewEventSQLite(db),
		NoticeRepo: NewNoticeSQLite(db),
		Auth:       NewUserRepository(db),
	}
}
