package service

import (
	"context"
	"time"

	"smartgarden/internal/logger"

	"github.com/robfig/cron/v3"
)

const (
	DefaultNoticeSweep = "@every 1m"
	DefaultNoticeTTL   = 10 * time.Minute

	sweepTimeout = 5 * time.Second
)

// sweeper is the part of NoticeService the janitor needs.
type sweeper interface {
	Sweep(ctx context.Context, ttl time.Duration) (int64, error)
}

// Housekeeper expires old notices on a cron schedule.
type Housekeeper struct {
	cron    *cron.Cron
	notices sweeper
	ttl     time.Duration
	log     *logger.Logger
}

// NewHousekeeper schedules the notice sweep. An empty spec or zero ttl uses the defaults.
func NewHousekeeper(notices sweeper, spec string, ttl time.Duration, log *logger.Logger) (*Housekeeper, error) {
	if spec == "" {
		spec = DefaultNoticeSweep
	}
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	h := &Housekeeper{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{logger.OrNop(log)}))),
		notices: notices,
		ttl:     ttl,
		log:     logger.OrNop(log),
	}
	if _, err := h.cron.AddFunc(spec, h.sweepNotices); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Housekeeper) Start() {
	h.cron.Start()
	h.log.Infow("housekeeping_started", "ttl", h.ttl)
}

// Stop halts the schedule and waits for a running sweep.
func (h *Housekeeper) Stop() {
	<-h.cron.Stop().Done()
	h.log.Infow("housekeeping_stopped")
}

func (h *Housekeeper) sweepNotices() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := h.notices.Sweep(ctx, h.ttl)
	if err != nil {
		h.log.Warnw("notice_sweep_failed", "err", err)
		return
	}
	if n > 0 {
		h.log.Debugw("notices_expired", "count", n)
	}
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "err", err)...)
}
