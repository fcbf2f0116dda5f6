package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"smartgarden/internal/metrics"
	"smartgarden/internal/models"
)

// fakeDevice is a scriptable DeviceClient. With a gate set, calls block until the
// gate yields or ctx ends.
type fakeDevice struct {
	mu sync.Mutex

	snap     models.RemoteSnapshot
	fetchErr error
	pushErr  error

	fetchGate chan struct{}
	pushGate  chan struct{}

	fetchStarted chan struct{}
	pushStarted  chan struct{}

	fetchCalls  int
	inFlight    int
	maxInFlight int
	pushes      []bool
}

func newFakeDevice(snap models.RemoteSnapshot) *fakeDevice {
	return &fakeDevice{
		snap:         snap,
		fetchStarted: make(chan struct{}, 16),
		pushStarted:  make(chan struct{}, 16),
	}
}

func (d *fakeDevice) FetchReading(ctx context.Context, endpoint string) (models.RemoteSnapshot, error) {
	d.mu.Lock()
	d.fetchCalls++
	d.inFlight++
	if d.inFlight > d.maxInFlight {
		d.maxInFlight = d.inFlight
	}
	gate := d.fetchGate
	d.mu.Unlock()

	d.fetchStarted <- struct{}{}
	defer func() {
		d.mu.Lock()
		d.inFlight--
		d.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.RemoteSnapshot{}, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snap, d.fetchErr
}

func (d *fakeDevice) PushActuatorCommand(ctx context.Context, endpoint string, desired bool) error {
	d.mu.Lock()
	d.pushes = append(d.pushes, desired)
	gate := d.pushGate
	d.mu.Unlock()

	d.pushStarted <- struct{}{}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pushErr
}

func (d *fakeDevice) set(fn func(d *fakeDevice)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d)
}

func (d *fakeDevice) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fetchCalls
}

func (d *fakeDevice) pushed() []bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]bool(nil), d.pushes...)
}

// fakeNoticeRepo keeps notices in a map.
type fakeNoticeRepo struct {
	mu      sync.Mutex
	notices map[string]models.Notice
	err     error
}

func newFakeNoticeRepo() *fakeNoticeRepo {
	return &fakeNoticeRepo{notices: map[string]models.Notice{}}
}

func (r *fakeNoticeRepo) Insert(ctx context.Context, n models.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.notices[n.ID] = n
	return nil
}

func (r *fakeNoticeRepo) ListActive(ctx context.Context) ([]models.Notice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Notice, 0, len(r.notices))
	for _, n := range r.notices {
		if !n.Dismissed {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RaisedAt.After(out[j].RaisedAt) })
	return out, nil
}

func (r *fakeNoticeRepo) Dismiss(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	n, ok := r.notices[id]
	if !ok {
		return false, nil
	}
	n.Dismissed = true
	r.notices[id] = n
	return true, nil
}

func (r *fakeNoticeRepo) DeleteRaisedBefore(ctx context.Context, t time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for id, notice := range r.notices {
		if notice.RaisedAt.Before(t) {
			delete(r.notices, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeNoticeRepo) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Kind)
	}
	sort.Strings(out)
	return out
}

type fakeConfigRepo struct {
	saved   []models.ThresholdConfig
	saveErr error
}

func (r *fakeConfigRepo) Save(ctx context.Context, cfg models.ThresholdConfig) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, cfg)
	return nil
}

func (r *fakeConfigRepo) Load(ctx context.Context) (models.ThresholdConfig, bool, error) {
	if len(r.saved) == 0 {
		return models.ThresholdConfig{}, false, nil
	}
	return r.saved[len(r.saved)-1], true, nil
}

// countingRecorder counts Incr calls per metric name.
type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
	gauges map[string]float64
}

var _ metrics.Recorder = (*countingRecorder)(nil)

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counts: map[string]int{}, gauges: map[string]float64{}}
}

func (c *countingRecorder) Gauge(name string, value float64, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
}

func (c *countingRecorder) Incr(name string, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name]++
}

func (c *countingRecorder) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

type countingKicker struct {
	mu    sync.Mutex
	kicks int
}

func (k *countingKicker) Kick() {
	k.mu.Lock()
	k.kicks++
	k.mu.Unlock()
}

// rig bundles a store and the services under test around one fake device.
type rig struct {
	store   *Store
	device  *fakeDevice
	events  *fakeEventRepo
	notices *fakeNoticeRepo
	configs *fakeConfigRepo
	metrics *countingRecorder

	acq      *AcquisitionService
	actuator *ActuatorService
	config   *ConfigurationService
	monitor  *MonitoringService
}

func newRig(snap models.RemoteSnapshot) *rig {
	r := &rig{
		store:   NewStore(models.DefaultThresholdConfig(), models.DefaultDeviceADCMax),
		device:  newFakeDevice(snap),
		events:  &fakeEventRepo{},
		notices: newFakeNoticeRepo(),
		configs: &fakeConfigRepo{},
		metrics: newCountingRecorder(),
	}
	notices := NewNoticeService(r.notices, nil)
	gen := NewGenerator(nil)
	r.acq = NewAcquisitionService(r.store, r.device, gen, r.events, notices, r.metrics, nil)
	r.actuator = NewActuatorService(r.store, r.device, r.events, notices, r.metrics, nil)
	r.config = NewConfigurationService(r.store, r.configs, r.events, notices, r.acq, nil)
	r.monitor = NewMonitoringService(r.store)
	return r
}

// connect puts the rig in connected mode against the fake device.
func (r *rig) connect(ctx context.Context) error {
	if _, err := r.config.Connect(ctx, "http://garden.local"); err != nil {
		return err
	}
	if err := r.acq.Trigger(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-r.device.fetchStarted:
		default:
			return nil
		}
	}
}

func remoteSnap(temp, hum float64, soil int, pump bool) models.RemoteSnapshot {
	return models.RemoteSnapshot{
		Reading: models.Reading{Temperature: temp, Humidity: hum, SoilMoisture: soil},
		PumpOn:  pump,
	}
}
