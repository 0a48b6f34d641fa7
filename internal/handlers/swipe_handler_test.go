package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/morgabi/homehunt/internal/services"
	"github.com/morgabi/homehunt/internal/swipe"
)

// MockSwipeService is a mock implementation of services.SwipeService.
type MockSwipeService struct {
	mock.Mock
}

func (m *MockSwipeService) StartSession(ctx context.Context, mode swipe.Mode) (string, swipe.Snapshot, error) {
	args := m.Called(ctx, mode)
	return args.String(0), args.Get(1).(swipe.Snapshot), args.Error(2)
}

func (m *MockSwipeService) Snapshot(sessionID string) (swipe.Snapshot, error) {
	args := m.Called(sessionID)
	return args.Get(0).(swipe.Snapshot), args.Error(1)
}

func (m *MockSwipeService) Begin(sessionID string, x float64) (swipe.Snapshot, error) {
	args := m.Called(sessionID, x)
	return args.Get(0).(swipe.Snapshot), args.Error(1)
}

func (m *MockSwipeService) Move(sessionID string, x float64) (swipe.Snapshot, error) {
	args := m.Called(sessionID, x)
	return args.Get(0).(swipe.Snapshot), args.Error(1)
}

func (m *MockSwipeService) End(ctx context.Context, sessionID string) (swipe.Outcome, swipe.Snapshot, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(swipe.Outcome), args.Get(1).(swipe.Snapshot), args.Error(2)
}

func (m *MockSwipeService) Reset(sessionID string) (swipe.Snapshot, error) {
	args := m.Called(sessionID)
	return args.Get(0).(swipe.Snapshot), args.Error(1)
}

func (m *MockSwipeService) EndSession(sessionID string) {
	m.Called(sessionID)
}

// newSwipeRouter wires the handler onto a fresh test router.
func newSwipeRouter(svc services.SwipeService) *gin.Engine {
	handler := NewSwipeHandler(svc)
	router := gin.New()
	router.POST("/swipe/sessions", handler.StartSession)
	router.GET("/swipe/sessions/:id", handler.Snapshot)
	router.POST("/swipe/sessions/:id/begin", handler.Begin)
	router.POST("/swipe/sessions/:id/move", handler.Move)
	router.POST("/swipe/sessions/:id/end", handler.End)
	router.POST("/swipe/sessions/:id/reset", handler.Reset)
	router.DELETE("/swipe/sessions/:id", handler.EndSession)
	return router
}

func TestSwipeHandler_StartSession(t *testing.T) {
	t.Run("starts a scanned-mode session", func(t *testing.T) {
		snap := swipe.Snapshot{Mode: swipe.ModeScanned, Total: 3, CurrentItem: "s1"}
		mockSvc := new(MockSwipeService)
		mockSvc.On("StartSession", mock.Anything, swipe.ModeScanned).Return("sess-1", snap, nil)

		w := httptest.NewRecorder()
		req := jsonRequest(t, "POST", "/swipe/sessions", gin.H{"mode": "scanned"})
		newSwipeRouter(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "sess-1", resp.SessionID)
		assert.Equal(t, 3, resp.Snapshot.Total)
	})

	t.Run("rejects unknown mode before service", func(t *testing.T) {
		mockSvc := new(MockSwipeService)

		w := httptest.NewRecorder()
		req := jsonRequest(t, "POST", "/swipe/sessions", gin.H{"mode": "shuffle"})
		newSwipeRouter(mockSvc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "StartSession")
	})
}

func TestSwipeHandler_Gestures(t *testing.T) {
	t.Run("begin and move pass coordinates through", func(t *testing.T) {
		snap := swipe.Snapshot{Mode: swipe.ModeRegular, IsDragging: true, DragOffset: -60, Direction: swipe.DirectionLeft}
		mockSvc := new(MockSwipeService)
		mockSvc.On("Begin", "sess-1", 200.0).Return(swipe.Snapshot{IsDragging: true}, nil)
		mockSvc.On("Move", "sess-1", 140.0).Return(snap, nil)

		router := newSwipeRouter(mockSvc)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, "POST", "/swipe/sessions/sess-1/begin", gin.H{"x": 200.0}))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(t, "POST", "/swipe/sessions/sess-1/move", gin.H{"x": 140.0}))
		assert.Equal(t, http.StatusOK, w.Code)

		var resp SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, swipe.DirectionLeft, resp.Snapshot.Direction)
		assert.Equal(t, -60.0, resp.Snapshot.DragOffset)
	})

	t.Run("missing coordinate rejected", func(t *testing.T) {
		mockSvc := new(MockSwipeService)

		w := httptest.NewRecorder()
		newSwipeRouter(mockSvc).ServeHTTP(w, jsonRequest(t, "POST", "/swipe/sessions/sess-1/begin", gin.H{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "Begin")
	})

	t.Run("end returns outcome and next state", func(t *testing.T) {
		outcome := swipe.Outcome{Kind: swipe.OutcomeLike, ItemID: "a1"}
		after := swipe.Snapshot{Mode: swipe.ModeRegular, CurrentIndex: 1, CurrentItem: "a2", Total: 2}
		mockSvc := new(MockSwipeService)
		mockSvc.On("End", mock.Anything, "sess-1").Return(outcome, after, nil)

		w := httptest.NewRecorder()
		newSwipeRouter(mockSvc).ServeHTTP(w, httptest.NewRequest("POST", "/swipe/sessions/sess-1/end", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp EndResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, swipe.OutcomeLike, resp.Outcome.Kind)
		assert.Equal(t, 1, resp.Snapshot.CurrentIndex)
	})

	t.Run("end without gesture", func(t *testing.T) {
		mockSvc := new(MockSwipeService)
		mockSvc.On("End", mock.Anything, "sess-1").
			Return(swipe.Outcome{}, swipe.Snapshot{}, swipe.ErrNoGesture)

		w := httptest.NewRecorder()
		newSwipeRouter(mockSvc).ServeHTTP(w, httptest.NewRequest("POST", "/swipe/sessions/sess-1/end", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSwipeHandler_SessionLifecycle(t *testing.T) {
	t.Run("unknown session is a 404", func(t *testing.T) {
		mockSvc := new(MockSwipeService)
		mockSvc.On("Snapshot", "gone").Return(swipe.Snapshot{}, swipe.ErrSessionNotFound)

		w := httptest.NewRecorder()
		newSwipeRouter(mockSvc).ServeHTTP(w, httptest.NewRequest("GET", "/swipe/sessions/gone", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("reset returns first card", func(t *testing.T) {
		mockSvc := new(MockSwipeService)
		mockSvc.On("Reset", "sess-1").Return(swipe.Snapshot{CurrentIndex: 0, Total: 2}, nil)

		w := httptest.NewRecorder()
		newSwipeRouter(mockSvc).ServeHTTP(w, httptest.NewRequest("POST", "/swipe/sessions/sess-1/reset", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete ends the session", func(t *testing.T) {
		mockSvc := new(MockSwipeService)
		mockSvc.On("EndSession", "sess-1").Return()

		w := httptest.NewRecorder()
		newSwipeRouter(mockSvc).ServeHTTP(w, httptest.NewRequest("DELETE", "/swipe/sessions/sess-1", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockSvc.AssertCalled(t, "EndSession", "sess-1")
	})
}
