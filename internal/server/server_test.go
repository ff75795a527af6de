package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(DefaultConfig(), log.New(io.Discard), zerolog.Nop(), quartz.NewMock(t))
	require.NoError(t, err)
	return s
}

func TestNewServerSeedsPresetRooms(t *testing.T) {
	s := testServer(t)

	list := s.roomList()
	require.Len(t, list.Rooms, 2)

	names := map[string]string{}
	for _, r := range list.Rooms {
		names[r.Name] = r.Variant
		assert.Len(t, r.RoomID, 6)
		assert.Zero(t, r.Players)
		assert.False(t, r.HasPassword)
	}
	assert.Equal(t, "NLH", names["main"])
	assert.Equal(t, "PLO", names["plo"])
}

func TestResumeSeatFindsTokenHolder(t *testing.T) {
	s := testServer(t)
	r := s.manager.List()[0]
	require.NoError(t, s.manager.SitDown(r.ID, "p0", "Alice", 0, 100))
	r.Table.Seats[0].ResumeToken = "tok-abc"

	id, ok := s.resumeSeat(r, "tok-abc")
	require.True(t, ok)
	assert.Equal(t, "p0", id)

	_, ok = s.resumeSeat(r, "tok-wrong")
	assert.False(t, ok)
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestWebSocketUpgradeRequiresName(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
