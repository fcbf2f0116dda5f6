package service

import (
	"context"
	"fmt"
	"time"

	"smartgarden/internal/apperr"
	"smartgarden/internal/logger"
	"smartgarden/internal/metrics"
	"smartgarden/internal/models"
	"smartgarden/internal/repository"
)

// AcquisitionService polls the active source and writes the result to the store.
// At most one acquisition runs at a time, whether started by the loop or by Trigger.
type AcquisitionService struct {
	store   *Store
	device  DeviceClient
	gen     *Generator
	events  repository.EventRepo
	notices Notices
	metrics metrics.Recorder
	log     *logger.Logger

	slot chan struct{}
	kick chan struct{}
}

func NewAcquisitionService(store *Store, device DeviceClient, gen *Generator, events repository.EventRepo, notices Notices, rec metrics.Recorder, log *logger.Logger) *AcquisitionService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &AcquisitionService{
		store:   store,
		device:  device,
		gen:     gen,
		events:  events,
		notices: notices,
		metrics: rec,
		log:     logger.OrNop(log),
		slot:    make(chan struct{}, 1),
		kick:    make(chan struct{}, 1),
	}
}

// Run ticks immediately, then every PollInterval until ctx is canceled. The
// interval is re-read after each tick. Kick starts the next tick early.
func (s *AcquisitionService) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-s.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		if err := s.acquire(ctx); err != nil {
			return
		}
		_ = s.tick(ctx)
		s.release()

		timer.Reset(s.store.Config().PollInterval())
	}
}

// Trigger runs one acquisition now, waiting for any in-flight one to finish first.
func (s *AcquisitionService) Trigger(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return s.tick(ctx)
}

// Kick asks Run for an early tick. It never blocks.
func (s *AcquisitionService) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *AcquisitionService) acquire(ctx context.Context) error {
	select {
	case s.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AcquisitionService) release() { <-s.slot }

// tick performs one acquisition. Failures are recorded in the store and returned;
// a panic is recovered so the loop keeps going.
func (s *AcquisitionService) tick(ctx context.Context) (err error) {
	const op = "acquisition tick"
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("acquisition_panic", "panic", r)
			err = apperr.Newf(apperr.Internal, op, "panic: %v", r)
		}
	}()

	gen, snap := s.store.dispatch()

	if snap.Mode == models.ModeSimulated {
		r := s.gen.Generate()
		cfg := snap.EffectiveConfig()
		pump := SuggestPump(r, cfg.SoilThreshold, models.SimulatedADCMax)
		return s.apply(ctx, gen, snap.Endpoint, r, pump)
	}

	remote, ferr := s.device.FetchReading(ctx, snap.Endpoint)
	if ferr != nil {
		s.fail(ctx, gen, snap.Endpoint, ferr)
		return ferr
	}
	return s.apply(ctx, gen, snap.Endpoint, remote.Reading, remote.PumpOn)
}

func (s *AcquisitionService) apply(ctx context.Context, gen uint64, endpoint string, r models.Reading, pump bool) error {
	applied, prev, err := s.store.applyReading(ctx, gen, r, pump)
	if err != nil {
		return err
	}
	if !applied {
		s.log.Debugw("acquisition_discarded", "generation", gen, "endpoint", endpoint)
		return nil
	}

	mode := s.store.Status().Mode
	tag := "mode:" + string(mode)
	pump = s.store.PumpOn()
	s.metrics.Incr(metrics.CountAcquisitionOK, tag)
	s.metrics.Gauge(metrics.GaugeTemperature, r.Temperature, tag)
	s.metrics.Gauge(metrics.GaugeHumidity, r.Humidity, tag)
	s.metrics.Gauge(metrics.GaugeSoilMoisture, float64(r.SoilMoisture), tag)
	s.metrics.Gauge(metrics.GaugePumpOn, boolGauge(pump), tag)

	if prev != models.ModeSimulated && prev != models.ModeConnected {
		s.log.Infow("device_connected", "endpoint", endpoint, "from", prev)
		recordEvent(ctx, s.events, s.log, models.EventModeChange, fmt.Sprintf("connected to %s", endpoint),
			map[string]any{"from": prev, "to": models.ModeConnected, "endpoint": endpoint})
	}
	return nil
}

func (s *AcquisitionService) fail(ctx context.Context, gen uint64, endpoint string, cause error) {
	applied, prev := s.store.markFailure(gen, cause)
	if !applied {
		s.log.Debugw("acquisition_failure_discarded", "generation", gen, "endpoint", endpoint, "err", cause)
		return
	}
	s.metrics.Incr(metrics.CountAcquisitionKO, "code:"+string(apperr.CodeOf(cause)))
	s.log.Warnw("acquisition_failed", "endpoint", endpoint, "err", cause)
	if prev == models.ModeDisconnected {
		return
	}

	recordEvent(ctx, s.events, s.log, models.EventAcquisitionError, fmt.Sprintf("lost %s", endpoint),
		map[string]any{"from": prev, "to": models.ModeDisconnected, "endpoint": endpoint, "err": cause.Error()})
	if s.notices != nil {
		msg := fmt.Sprintf("Device %s is not responding: %v", endpoint, cause)
		if _, err := s.notices.RaiseNotice(ctx, models.NoticeDeviceLost, msg); err != nil {
			s.log.Warnw("notice_raise_failed", "err", err)
		}
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
