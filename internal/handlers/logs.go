package handlers

import (
	"net/http"
	"strings"
	"time"

	"smartgarden/internal/apperr"
	"smartgarden/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var queryTimeLayouts = []string{time.RFC3339, layoutDateTime, layoutDate}

// @Summary      List garden events
// @Description  Filter by time (RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD', UTC) and type. A date-only 'to' covers that whole day.
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-06-01)
// @Param        to    query   string  false  "End of range, inclusive"  example(2025-06-30)
// @Param        type  query   string  false  "Event type"  Enums(MODE_CHANGE,CONFIG_CHANGE,ACTUATOR,ACTUATOR_ROLLBACK,ACQUISITION_ERROR)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	filter, err := parseLogFilter(c)
	if err != nil {
		h.respondAppError(c, "logs_bad_query", err)
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), filter)
	if err != nil {
		h.respondAppError(c, "logs_list_failed", err, "from", filter.From, "to", filter.To, "type", filter.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// parseLogFilter reads from, to and type from the query string.
func parseLogFilter(c *gin.Context) (service.LogFilter, error) {
	const op = "parse log query"
	f := service.LogFilter{Type: c.Query("type")}

	if qs := c.Query("from"); qs != "" {
		t, ok := parseQueryTime(qs)
		if !ok {
			return f, apperr.Newf(apperr.ValidationFailure, op, "invalid 'from' %q; use RFC3339 or YYYY-MM-DD", qs)
		}
		f.From = t
	}
	if qs := c.Query("to"); qs != "" {
		t, ok := parseQueryTime(qs)
		if !ok {
			return f, apperr.Newf(apperr.ValidationFailure, op, "invalid 'to' %q; use RFC3339 or YYYY-MM-DD", qs)
		}
		if !strings.ContainsAny(qs, "T ") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = t
	}
	return f, nil
}

// parseQueryTime tries each accepted layout and returns the instant in UTC.
func parseQueryTime(s string) (time.Time, bool) {
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
