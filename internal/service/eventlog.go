package service

import (
	"context"
	"strings"
	"time"

	"smartgarden/internal/apperr"
	"smartgarden/internal/models"
	"smartgarden/internal/repository"
)

const opListEvents = "list events"

// LogFilter selects events by time range and type. Zero bounds are open.
type LogFilter struct {
	From time.Time // inclusive
	To   time.Time // inclusive
	Type string    // empty for all types; case-insensitive
}

var knownEventTypes = map[string]struct{}{
	models.EventModeChange:       {},
	models.EventConfigChange:     {},
	models.EventActuator:         {},
	models.EventActuatorRollback: {},
	models.EventAcquisitionError: {},
}

// normalize returns f with UTC bounds and an upper-case type, or a ValidationFailure.
func (f LogFilter) normalize() (LogFilter, error) {
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return LogFilter{}, apperr.New(apperr.ValidationFailure, opListEvents, "invalid time range: from must be <= to")
	}

	f.Type = strings.ToUpper(strings.TrimSpace(f.Type))
	if _, ok := knownEventTypes[f.Type]; f.Type != "" && !ok {
		return LogFilter{}, apperr.Newf(apperr.ValidationFailure, opListEvents, "unknown event type %q", f.Type)
	}
	return f, nil
}

// EventLogService serves the garden event history.
type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.GardenEvent, error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.List(ctx, f.From, f.To, f.Type)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, opListEvents, err)
	}
	return events, nil
}
