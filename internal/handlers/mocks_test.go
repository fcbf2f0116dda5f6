package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"smartgarden/internal/models"
	"smartgarden/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockTelemetry struct {
	mu    sync.Mutex
	tel   models.Telemetry
	calls int
}

func (m *mockTelemetry) GetTelemetry(ctx context.Context) models.Telemetry {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.tel
}

type mockConfiguration struct {
	cfg         models.ThresholdConfig
	adjustments []string
	applyErr    error
	status      models.ConnectionStatus
	connectErr  error
	discErr     error

	lastApplied models.ThresholdConfig
	lastURL     string
}

func (m *mockConfiguration) GetConfig(ctx context.Context) models.ThresholdConfig { return m.cfg }
func (m *mockConfiguration) ApplyConfig(ctx context.Context, cfg models.ThresholdConfig) (models.ThresholdConfig, []string, error) {
	m.lastApplied = cfg
	if m.applyErr != nil {
		return m.cfg, nil, m.applyErr
	}
	m.cfg = cfg
	return cfg, m.adjustments, nil
}
func (m *mockConfiguration) Status() models.ConnectionStatus { return m.status }
func (m *mockConfiguration) Connect(ctx context.Context, rawURL string) (models.ConnectionStatus, error) {
	m.lastURL = rawURL
	if m.connectErr != nil {
		return m.status, m.connectErr
	}
	m.status = models.ConnectionStatus{Mode: models.ModeConnecting, Endpoint: rawURL}
	return m.status, nil
}
func (m *mockConfiguration) Disconnect(ctx context.Context) (models.ConnectionStatus, error) {
	if m.discErr != nil {
		return m.status, m.discErr
	}
	m.status = models.ConnectionStatus{Mode: models.ModeSimulated}
	return m.status, nil
}

type mockAcquisition struct {
	triggerErr error
	triggers   int
}

func (m *mockAcquisition) Run(ctx context.Context) {}
func (m *mockAcquisition) Trigger(ctx context.Context) error {
	m.triggers++
	return m.triggerErr
}
func (m *mockAcquisition) Kick() {}

type mockNotices struct {
	list       []models.Notice
	listErr    error
	dismissErr error
	dismissed  []string
}

func (m *mockNotices) ListNotices(ctx context.Context) ([]models.Notice, error) {
	return m.list, m.listErr
}
func (m *mockNotices) DismissNotice(ctx context.Context, id string) error {
	m.dismissed = append(m.dismissed, id)
	return m.dismissErr
}
func (m *mockNotices) RaiseNotice(ctx context.Context, kind, message string) (models.Notice, error) {
	return models.Notice{ID: "n", Kind: kind, Message: message, RaisedAt: time.Now().UTC()}, nil
}

type mockEventLog struct {
	resp     []models.GardenEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.GardenEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
