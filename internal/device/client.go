// Package device talks to the garden controller's HTTP API.
package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smartgarden/internal/apperr"
	"smartgarden/internal/logger"
	"smartgarden/internal/models"
)

const (
	sensorsPath = "/api/sensors"
	pumpPath    = "/api/pump"

	// DefaultTimeout bounds every request when none is configured.
	DefaultTimeout = 5 * time.Second

	maxBodyBytes = 64 << 10
)

// sensorsPayload mirrors the device JSON. Pointers detect missing fields.
type sensorsPayload struct {
	Temperature  *float64 `json:"temperature"`
	Humidity     *float64 `json:"humidity"`
	SoilMoisture *float64 `json:"soilMoisture"`
	PumpStatus   *bool    `json:"pumpStatus"`
}

type pumpPayload struct {
	Status bool `json:"status"`
}

// Client performs single, non-retried requests against a device endpoint.
type Client struct {
	http *http.Client
	log  *logger.Logger
}

// NewClient returns a client whose requests never outlive timeout.
func NewClient(timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  logger.OrNop(log),
	}
}

// NewClientWithHTTP uses hc as transport; hc must carry its own timeout.
func NewClientWithHTTP(hc *http.Client, log *logger.Logger) *Client {
	return &Client{http: hc, log: logger.OrNop(log)}
}

// NormalizeEndpoint validates an http(s) base URL and strips trailing slashes.
func NormalizeEndpoint(raw string) (string, error) {
	const op = "normalize endpoint"
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", apperr.New(apperr.ValidationFailure, op, "endpoint is empty")
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", apperr.Wrap(apperr.ValidationFailure, op, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", apperr.Newf(apperr.ValidationFailure, op, "unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", apperr.New(apperr.ValidationFailure, op, "endpoint has no host")
	}
	return strings.TrimRight(s, "/"), nil
}

// FetchReading reads the sensors and pump state from endpoint.
func (c *Client) FetchReading(ctx context.Context, endpoint string) (models.RemoteSnapshot, error) {
	const op = "fetch reading"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+sensorsPath, nil)
	if err != nil {
		return models.RemoteSnapshot{}, apperr.Wrap(apperr.ValidationFailure, op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.RemoteSnapshot{}, apperr.Wrap(apperr.NetworkFailure, op, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.RemoteSnapshot{}, apperr.Newf(apperr.NetworkFailure, op, "device returned status %d", resp.StatusCode)
	}

	var p sensorsPayload
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	if err := dec.Decode(&p); err != nil {
		if isTransportError(err) {
			return models.RemoteSnapshot{}, apperr.Wrap(apperr.NetworkFailure, op, err)
		}
		return models.RemoteSnapshot{}, apperr.Wrap(apperr.DecodeFailure, op, err)
	}

	snap, err := p.snapshot()
	if err != nil {
		return models.RemoteSnapshot{}, apperr.Wrap(apperr.DecodeFailure, op, err)
	}

	c.log.Debugw("device_reading_fetched",
		"endpoint", endpoint,
		"temperature", snap.Reading.Temperature,
		"humidity", snap.Reading.Humidity,
		"soil", snap.Reading.SoilMoisture,
		"pump_on", snap.PumpOn,
	)
	return snap, nil
}

// PushActuatorCommand asks the device to switch the pump.
func (c *Client) PushActuatorCommand(ctx context.Context, endpoint string, desired bool) error {
	const op = "push pump command"

	body, err := json.Marshal(pumpPayload{Status: desired})
	if err != nil {
		return apperr.Wrap(apperr.Internal, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+pumpPath, bytes.NewReader(body))
	if err != nil {
		return apperr.Wrap(apperr.ValidationFailure, op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.NetworkFailure, op, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperr.Newf(apperr.NetworkFailure, op, "device returned status %d", resp.StatusCode)
	}

	c.log.Debugw("device_pump_command_sent", "endpoint", endpoint, "status", desired)
	return nil
}

func (p sensorsPayload) snapshot() (models.RemoteSnapshot, error) {
	var missing []string
	if p.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if p.Humidity == nil {
		missing = append(missing, "humidity")
	}
	if p.SoilMoisture == nil {
		missing = append(missing, "soilMoisture")
	}
	if p.PumpStatus == nil {
		missing = append(missing, "pumpStatus")
	}
	if len(missing) > 0 {
		return models.RemoteSnapshot{}, fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}
	if *p.SoilMoisture < math.MinInt32 || *p.SoilMoisture > math.MaxInt32 {
		return models.RemoteSnapshot{}, fmt.Errorf("soilMoisture out of range: %v", *p.SoilMoisture)
	}
	return models.RemoteSnapshot{
		Reading: models.Reading{
			Temperature:  *p.Temperature,
			Humidity:     *p.Humidity,
			SoilMoisture: int(math.Round(*p.SoilMoisture)),
		},
		PumpOn: *p.PumpStatus,
	}, nil
}

// isTransportError tells a body read cut short by the network apart from bad JSON.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxBodyBytes))
	_ = body.Close()
}
