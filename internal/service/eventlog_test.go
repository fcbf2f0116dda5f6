package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smartgarden/internal/apperr"
	"smartgarden/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventRepo records appends and answers List with canned events.
type fakeEventRepo struct {
	mu       sync.Mutex
	appended []models.GardenEvent

	gotFrom time.Time
	gotTo   time.Time
	gotType string
	calls   int

	events []models.GardenEvent
	err    error
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.GardenEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotFrom, f.gotTo, f.gotType = from, to, typ
	return f.events, f.err
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.GardenEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return nil
}

// types returns the types of appended events in order.
func (f *fakeEventRepo) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.appended))
	for _, e := range f.appended {
		out = append(out, e.Type)
	}
	return out
}

func TestLogFilter_Normalize(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*3600)
	from := time.Date(2025, time.August, 1, 12, 0, 0, 0, plus3)
	to := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      LogFilter
		want    LogFilter
		wantErr bool
	}{
		{name: "empty", in: LogFilter{}, want: LogFilter{}},
		{
			name: "bounds to UTC and type upper-cased",
			in:   LogFilter{From: from, To: to, Type: " mode_change "},
			want: LogFilter{From: time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC), To: to, Type: models.EventModeChange},
		},
		{name: "equal bounds", in: LogFilter{From: to, To: to}, want: LogFilter{From: to, To: to}},
		{name: "open upper bound", in: LogFilter{From: to}, want: LogFilter{From: to}},
		{name: "inverted range", in: LogFilter{From: to.Add(time.Second), To: to}, wantErr: true},
		{name: "unknown type", in: LogFilter{Type: "FURNACE_ON"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.normalize()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperr.IsCode(err, apperr.ValidationFailure))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.From.Equal(got.From), "from %v", got.From)
			assert.True(t, tt.want.To.Equal(got.To), "to %v", got.To)
			if !got.From.IsZero() {
				assert.Equal(t, time.UTC, got.From.Location())
			}
			assert.Equal(t, tt.want.Type, got.Type)
		})
	}
}

func TestEventLogService_List(t *testing.T) {
	ctx := context.Background()
	events := []models.GardenEvent{{EventID: "e1", Type: models.EventActuator, Description: "pump ON"}}

	t.Run("passes normalized filter to repo", func(t *testing.T) {
		repo := &fakeEventRepo{events: events}
		got, err := NewEventLogService(repo).List(ctx, LogFilter{Type: "actuator"})
		require.NoError(t, err)
		assert.Equal(t, events, got)
		assert.Equal(t, models.EventActuator, repo.gotType)
		assert.True(t, repo.gotFrom.IsZero())
		assert.True(t, repo.gotTo.IsZero())
	})

	t.Run("invalid filter never reaches repo", func(t *testing.T) {
		repo := &fakeEventRepo{}
		now := time.Now()
		_, err := NewEventLogService(repo).List(ctx, LogFilter{From: now, To: now.Add(-time.Minute)})
		assert.True(t, apperr.IsCode(err, apperr.ValidationFailure))
		assert.Zero(t, repo.calls)
	})

	t.Run("repo failure is internal", func(t *testing.T) {
		repo := &fakeEventRepo{err: errors.New("db closed")}
		_, err := NewEventLogService(repo).List(ctx, LogFilter{})
		assert.True(t, apperr.IsCode(err, apperr.Internal))
	})
}
