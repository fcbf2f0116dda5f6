package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartgarden/internal/apperr"
	"smartgarden/internal/models"
	"smartgarden/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getLogs(t *testing.T, s *service.Service, query string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/"+query, nil)
	req.Header = authHeader("valid")
	newTestRouter(s).ServeHTTP(w, req)
	return w
}

func TestGetLogs_List(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	logs := &mockEventLog{resp: []models.GardenEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventActuator, Description: "pump ON"},
		{EventID: "e2", OccurredAt: now.Add(time.Second), Type: models.EventModeChange, Description: "connecting to http://garden.local"},
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 99}, EventLog: logs}

	q := "?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=mode_change"
	w := getLogs(t, s, q)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Count  int                  `json:"count"`
		Events []models.GardenEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Count)
	assert.Len(t, out.Events, 2)
	assert.Equal(t, now, logs.lastFrom)
	assert.Equal(t, now.Add(2*time.Second), logs.lastTo)
	assert.Equal(t, "mode_change", logs.lastType, "type normalization belongs to the service")
}

func TestGetLogs_DateOnlyToCoversWholeDay(t *testing.T) {
	logs := &mockEventLog{}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs}

	w := getLogs(t, s, "?from=2025-06-01&to=2025-06-30")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), logs.lastFrom)
	assert.Equal(t, time.Date(2025, 6, 30, 23, 59, 59, 999999999, time.UTC), logs.lastTo)
}

func TestGetLogs_Errors(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		svcErr   error
		wantCode int
	}{
		{name: "bad from", query: "?from=notatime", wantCode: http.StatusBadRequest},
		{name: "bad to", query: "?to=31/12/2025", wantCode: http.StatusBadRequest},
		{name: "inverted range", query: "?from=2025-06-02&to=2025-06-01",
			svcErr: apperr.New(apperr.ValidationFailure, "list events", "invalid time range"), wantCode: http.StatusBadRequest},
		{name: "store failure", svcErr: apperr.Wrap(apperr.Internal, "list events", errors.New("db closed")), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: &mockEventLog{err: tt.svcErr}}
			w := getLogs(t, s, tt.query)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestParseQueryTime(t *testing.T) {
	for _, in := range []string{"2025-08-27T15:04:05Z", "2025-08-27 15:04:05", "2025-08-27"} {
		_, ok := parseQueryTime(in)
		assert.True(t, ok, in)
	}
	_, ok := parseQueryTime("27.08.2025")
	assert.False(t, ok)
}
