package service

import (
	"context"
	"time"

	"smartgarden/internal/logger"
	"smartgarden/internal/metrics"
	"smartgarden/internal/models"
	"smartgarden/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Telemetry exposes the live reading, pump state, bands and connection mode.
type Telemetry interface {
	GetTelemetry(ctx context.Context) models.Telemetry
}

// Configuration exposes thresholds and the connect/disconnect state machine.
type Configuration interface {
	GetConfig(ctx context.Context) models.ThresholdConfig
	ApplyConfig(ctx context.Context, cfg models.ThresholdConfig) (models.ThresholdConfig, []string, error)
	Status() models.ConnectionStatus
	Connect(ctx context.Context, rawURL string) (models.ConnectionStatus, error)
	Disconnect(ctx context.Context) (models.ConnectionStatus, error)
}

// Actuator drives the pump with an optimistic update.
type Actuator interface {
	SetActuator(ctx context.Context, desired bool) *Command
}

// Acquisition runs the poll loop. Stop via context cancellation in main().
type Acquisition interface {
	Run(ctx context.Context)
	Trigger(ctx context.Context) error
	Kick()
}

type Notices interface {
	ListNotices(ctx context.Context) ([]models.Notice, error)
	DismissNotice(ctx context.Context, id string) error
	RaiseNotice(ctx context.Context, kind, message string) (models.Notice, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.GardenEvent, error)
}

// DeviceClient is the remote garden controller as seen by the services.
type DeviceClient interface {
	FetchReading(ctx context.Context, endpoint string) (models.RemoteSnapshot, error)
	PushActuatorCommand(ctx context.Context, endpoint string, desired bool) error
}

// Deps carries everything NewService needs besides the repositories.
type Deps struct {
	Device       DeviceClient
	Metrics      metrics.Recorder
	Log          *logger.Logger
	Thresholds   models.ThresholdConfig
	DeviceADCMax int
	Generator    *Generator
	Auth         AuthConfig
}

type Service struct {
	Telemetry
	Configuration
	Actuator
	Acquisition
	Notices
	EventLog
	Authorization

	Store *Store
}

// NewService wires the repository layer and the device client into concrete services.
func NewService(repos *repository.Repository, d Deps) *Service {
	log := logger.OrNop(d.Log)
	rec := d.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}
	gen := d.Generator
	if gen == nil {
		gen = NewGenerator(nil)
	}

	store := NewStore(d.Thresholds, d.DeviceADCMax)
	notices := NewNoticeService(repos.NoticeRepo, log)
	acq := NewAcquisitionService(store, d.Device, gen, repos.EventRepo, notices, rec, log)

	return &Service{
		Telemetry:     NewMonitoringService(store),
		Configuration: NewConfigurationService(store, repos.ConfigRepo, repos.EventRepo, notices, acq, log),
		Actuator:      NewActuatorService(store, d.Device, repos.EventRepo, notices, rec, log),
		Acquisition:   acq,
		Notices:       notices,
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, d.Auth),
		Store:         store,
	}
}

// recordEvent appends an event and only logs when the store refuses it.
func recordEvent(ctx context.Context, repo repository.EventRepo, log *logger.Logger, typ, desc string, meta any) {
	if repo == nil {
		return
	}
	err := repo.Append(ctx, models.GardenEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil {
		log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}
