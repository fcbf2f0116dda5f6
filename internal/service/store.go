package service

import (
	"context"
	"sync"
	"time"

	"smartgarden/internal/apperr"
	"smartgarden/internal/models"
)

// Store is the process-scoped live model: the current reading, pump state,
// connection mode and endpoint, the active thresholds, and the actuator slot.
// Services are the only writers; presentation reads through Telemetry.
type Store struct {
	mu sync.Mutex

	reading   models.Reading
	pumpOn    bool
	mode      models.ConnectionMode
	endpoint  string
	lastErr   string
	updatedAt time.Time

	cfg          models.ThresholdConfig
	deviceADCMax int

	// generation tags in-flight acquisitions; any change invalidates them.
	generation uint64
	// pumpFence is the generation current when the last remote command began.
	// Results dispatched at or before it carry a stale pump state.
	pumpFence uint64

	pending *Command
	idle    chan struct{} // closed while no actuator command is pending
	cmdSeq  uint64
}

// snapshot is a consistent copy of the store taken under its lock.
type snapshot struct {
	Reading      models.Reading
	PumpOn       bool
	PumpPending  bool
	Mode         models.ConnectionMode
	Endpoint     string
	LastError    string
	UpdatedAt    time.Time
	Config       models.ThresholdConfig
	DeviceADCMax int
}

func NewStore(cfg models.ThresholdConfig, deviceADCMax int) *Store {
	if deviceADCMax <= 0 {
		deviceADCMax = models.DefaultDeviceADCMax
	}
	idle := make(chan struct{})
	close(idle)
	return &Store{
		reading:      models.InitialReading(),
		pumpOn:       true,
		mode:         models.ModeSimulated,
		updatedAt:    time.Now().UTC(),
		cfg:          cfg,
		deviceADCMax: deviceADCMax,
		idle:         idle,
	}
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		Reading:      s.reading,
		PumpOn:       s.pumpOn,
		PumpPending:  s.pending != nil,
		Mode:         s.mode,
		Endpoint:     s.endpoint,
		LastError:    s.lastErr,
		UpdatedAt:    s.updatedAt,
		Config:       s.cfg,
		DeviceADCMax: s.deviceADCMax,
	}
}

func (s *Store) Config() models.ThresholdConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Store) setConfig(cfg models.ThresholdConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Store) DeviceADCMax() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceADCMax
}

func (s *Store) Status() models.ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ConnectionStatus{Mode: s.mode, Endpoint: s.endpoint}
}

// PumpOn returns the displayed pump state.
func (s *Store) PumpOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pumpOn
}

// Reading returns the displayed reading.
func (s *Store) Reading() models.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading
}

// ADCMax is the soil full-scale of the source currently feeding the store.
func (s snapshot) ADCMax() int {
	if s.Mode == models.ModeSimulated {
		return models.SimulatedADCMax
	}
	return s.DeviceADCMax
}

// EffectiveConfig is Config with SoilThreshold expressed on the ADCMax scale.
func (s snapshot) EffectiveConfig() models.ThresholdConfig {
	cfg := s.Config
	if s.Mode == models.ModeSimulated {
		cfg.SoilThreshold = models.RescaleSoilThreshold(cfg.SoilThreshold, s.DeviceADCMax, models.SimulatedADCMax)
	}
	return cfg
}

func (s *Store) connect(endpoint string) (models.ConnectionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != models.ModeSimulated {
		return models.ConnectionStatus{Mode: s.mode, Endpoint: s.endpoint},
			apperr.Newf(apperr.InvalidTransition, "connect", "already %s", s.mode)
	}
	s.mode = models.ModeConnecting
	s.endpoint = endpoint
	s.lastErr = ""
	s.generation++
	return models.ConnectionStatus{Mode: s.mode, Endpoint: s.endpoint}, nil
}

func (s *Store) disconnect() (models.ConnectionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == models.ModeSimulated {
		return models.ConnectionStatus{Mode: s.mode},
			apperr.New(apperr.InvalidTransition, "disconnect", "not connected")
	}
	s.mode = models.ModeSimulated
	s.endpoint = ""
	s.lastErr = ""
	s.generation++
	return models.ConnectionStatus{Mode: s.mode}, nil
}

// dispatch starts an acquisition and returns what it must run against.
func (s *Store) dispatch() (gen uint64, snap snapshot) {
	s.mu.Lock()
	s.generation++
	gen = s.generation
	s.mu.Unlock()
	return gen, s.snapshot()
}

// applyReading replaces reading and pump state if gen is still current. It waits
// for a pending actuator command to resolve first. Pump state is kept when a
// remote command began after gen was dispatched. The returned mode is the one
// before the update.
func (s *Store) applyReading(ctx context.Context, gen uint64, r models.Reading, pumpOn bool) (applied bool, prev models.ConnectionMode, err error) {
	for {
		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			return false, "", nil
		}
		if s.pending == nil {
			prev = s.mode
			s.reading = r
			if gen > s.pumpFence {
				s.pumpOn = pumpOn
			}
			s.lastErr = ""
			s.updatedAt = time.Now().UTC()
			if s.mode != models.ModeSimulated {
				s.mode = models.ModeConnected
			}
			s.mu.Unlock()
			return true, prev, nil
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return false, "", ctx.Err()
		}
	}
}

// markFailure degrades to disconnected if gen is still current. Reading and pump are kept.
func (s *Store) markFailure(gen uint64, cause error) (applied bool, prev models.ConnectionMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.mode == models.ModeSimulated {
		return false, ""
	}
	prev = s.mode
	s.mode = models.ModeDisconnected
	s.lastErr = cause.Error()
	return true, prev
}

// beginCommand sets the pump optimistically and takes the actuator slot. A command
// already pending is superseded and returned so the caller can cancel it.
func (s *Store) beginCommand(desired bool, cancel context.CancelFunc) (cmd *Command, superseded *Command, endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cmdSeq++
	cmd = newCommand(s.cmdSeq, desired, s.pumpOn, cancel)
	s.pumpOn = desired
	s.updatedAt = time.Now().UTC()

	superseded = s.pending
	if superseded != nil {
		superseded.resolve(OutcomeSuperseded, nil)
	}

	if s.endpoint == "" {
		s.pending = nil
		s.releaseIdle()
		return cmd, superseded, ""
	}

	s.pending = cmd
	s.pumpFence = s.generation
	if isClosed(s.idle) {
		s.idle = make(chan struct{})
	}
	return cmd, superseded, s.endpoint
}

// finishCommand resolves the slot for cmd. It is a no-op for a superseded command.
// On failure the pump goes back to the value displayed before cmd.
func (s *Store) finishCommand(cmd *Command, pushErr error) (current bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != cmd {
		return false
	}
	if pushErr != nil {
		s.pumpOn = cmd.Prev
		s.updatedAt = time.Now().UTC()
	}
	s.pending = nil
	s.releaseIdle()
	return true
}

func (s *Store) releaseIdle() {
	if !isClosed(s.idle) {
		close(s.idle)
	}
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
