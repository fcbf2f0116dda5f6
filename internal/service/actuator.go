package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smartgarden/internal/apperr"
	"smartgarden/internal/logger"
	"smartgarden/internal/metrics"
	"smartgarden/internal/models"
	"smartgarden/internal/repository"
)

// Outcome is how an actuator command resolved.
type Outcome string

const (
	OutcomePending    Outcome = "pending"
	OutcomeApplied    Outcome = "applied"     // simulated mode, nothing to confirm
	OutcomeCommitted  Outcome = "committed"   // device accepted the command
	OutcomeRolledBack Outcome = "rolled_back" // device refused or was unreachable
	OutcomeSuperseded Outcome = "superseded"  // a newer command took over
)

// Command is the handle returned by SetActuator. It resolves exactly once.
type Command struct {
	ID      uint64
	Desired bool
	Prev    bool

	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	outcome Outcome
	err     error
}

func newCommand(id uint64, desired, prev bool, cancel context.CancelFunc) *Command {
	return &Command{
		ID:      id,
		Desired: desired,
		Prev:    prev,
		cancel:  cancel,
		done:    make(chan struct{}),
		outcome: OutcomePending,
	}
}

func (c *Command) resolve(o Outcome, err error) {
	c.once.Do(func() {
		c.outcome = o
		c.err = err
		if c.cancel != nil {
			c.cancel()
		}
		close(c.done)
	})
}

// Done is closed when the command has resolved.
func (c *Command) Done() <-chan struct{} { return c.done }

// Wait blocks until the command resolves or ctx ends. The error is the push
// failure for a rolled back command.
func (c *Command) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-c.done:
		return c.outcome, c.err
	case <-ctx.Done():
		return OutcomePending, ctx.Err()
	}
}

// Result reports the outcome without blocking.
func (c *Command) Result() (Outcome, error) {
	select {
	case <-c.done:
		return c.outcome, c.err
	default:
		return OutcomePending, nil
	}
}

type ActuatorService struct {
	store   *Store
	device  DeviceClient
	events  repository.EventRepo
	notices Notices
	metrics metrics.Recorder
	log     *logger.Logger
}

func NewActuatorService(store *Store, device DeviceClient, events repository.EventRepo, notices Notices, rec metrics.Recorder, log *logger.Logger) *ActuatorService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &ActuatorService{
		store:   store,
		device:  device,
		events:  events,
		notices: notices,
		metrics: rec,
		log:     logger.OrNop(log),
	}
}

// SetActuator shows desired immediately. In simulated mode the command is applied
// at once; otherwise it is pushed to the device in the background and rolled back
// on failure. A newer call supersedes a pending one.
func (s *ActuatorService) SetActuator(ctx context.Context, desired bool) *Command {
	pushCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cmd, superseded, endpoint := s.store.beginCommand(desired, cancel)
	if superseded != nil {
		s.log.Debugw("actuator_superseded", "id", superseded.ID, "by", cmd.ID)
	}

	if endpoint == "" {
		cmd.resolve(OutcomeApplied, nil)
		recordEvent(ctx, s.events, s.log, models.EventActuator, fmt.Sprintf("pump %s (simulated)", onOff(desired)),
			map[string]any{"desired": desired, "outcome": OutcomeApplied})
		return cmd
	}

	go s.push(pushCtx, cmd, endpoint)
	return cmd
}

func (s *ActuatorService) push(ctx context.Context, cmd *Command, endpoint string) {
	start := time.Now()
	err := s.device.PushActuatorCommand(ctx, endpoint, cmd.Desired)

	if !s.store.finishCommand(cmd, err) {
		return
	}

	// Side effects run on a fresh context; ctx is canceled by resolve.
	bg := context.Background()
	if err == nil {
		s.metrics.Incr(metrics.CountActuatorOK)
		s.log.Infow("actuator_committed", "id", cmd.ID, "desired", cmd.Desired, "elapsed", time.Since(start))
		recordEvent(bg, s.events, s.log, models.EventActuator, fmt.Sprintf("pump %s", onOff(cmd.Desired)),
			map[string]any{"desired": cmd.Desired, "endpoint": endpoint, "outcome": OutcomeCommitted})
		cmd.resolve(OutcomeCommitted, nil)
		return
	}

	s.metrics.Incr(metrics.CountActuatorKO, "code:"+string(apperr.CodeOf(err)))
	s.log.Warnw("actuator_rolled_back", "id", cmd.ID, "desired", cmd.Desired, "restored", cmd.Prev, "err", err)
	recordEvent(bg, s.events, s.log, models.EventActuatorRollback,
		fmt.Sprintf("pump %s failed, restored %s", onOff(cmd.Desired), onOff(cmd.Prev)),
		map[string]any{"desired": cmd.Desired, "restored": cmd.Prev, "endpoint": endpoint, "err": err.Error()})
	if s.notices != nil {
		msg := fmt.Sprintf("Could not switch the pump %s: %v", onOff(cmd.Desired), err)
		if _, nerr := s.notices.RaiseNotice(bg, models.NoticeActuatorRollback, msg); nerr != nil {
			s.log.Warnw("notice_raise_failed", "err", nerr)
		}
	}
	cmd.resolve(OutcomeRolledBack, err)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
