package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fortyacres/property-chat/internal/chat"
)

func newWSTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/chat", NewWebSocketHandler(chat.NewCoordinator(nil)).HandleWebSocket)
	return r
}

func TestWebSocketRefusedWithoutPropertyID(t *testing.T) {
	r := newWSTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/chat?userId=alice", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebSocketRefusedWithNonIntegerPropertyID(t *testing.T) {
	r := newWSTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/chat?propertyId=seven&userId=alice", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebSocketRefusedWithoutUserID(t *testing.T) {
	r := newWSTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/chat?propertyId=7", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
