package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartgarden/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSecuredRouter mounts operatorAuth in front of a probe that echoes the operator id.
func newSecuredRouter(auth *mockAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(&service.Service{Authorization: auth}, nil)
	r.GET("/secure", h.operatorAuth, func(c *gin.Context) {
		id, _ := c.Get(ctxOperatorID)
		c.JSON(http.StatusOK, gin.H{"operator_id": id})
	})
	return r
}

func TestOperatorAuth_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		parseErr error
		wantMsg  string
	}{
		{name: "missing header", wantMsg: errAuthMissing},
		{name: "wrong scheme", header: "Token abc", wantMsg: errAuthFormat},
		{name: "scheme only", header: "Bearer", wantMsg: errAuthFormat},
		{name: "blank token", header: "Bearer   ", wantMsg: errAuthFormat},
		{name: "expired token", header: "Bearer expired", parseErr: errors.New("token is expired"), wantMsg: errAuthToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newSecuredRouter(&mockAuth{parseErr: tt.parseErr})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			var out struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			assert.Equal(t, tt.wantMsg, out.Error)
		})
	}
}

func TestOperatorAuth_SetsOperatorID(t *testing.T) {
	for _, header := range []string{"Bearer good-token", "bearer good-token"} {
		auth := &mockAuth{parseID: 123}
		r := newSecuredRouter(auth)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"operator_id":123}`, w.Body.String())
		assert.Equal(t, "good-token", auth.lastParseToken)
	}
}

func TestBearerToken(t *testing.T) {
	tok, msg := bearerToken("Bearer  abc ")
	assert.Equal(t, "abc", tok)
	assert.Empty(t, msg)
}
