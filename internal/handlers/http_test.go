// internal/handlers/http_test.go
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawdash/drawdash/internal/auth"
)

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	HealthzHandler()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRoomsListing(t *testing.T) {
	s := newTestServer()
	host := newTestConn(s, 0)
	send(s, host, map[string]interface{}{"type": "createRoom", "userName": "alice"})
	roomID := createdRoomID(t, host)

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	RoomsHandler(s)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Rooms []roomSummary `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, roomID, body.Rooms[0].RoomID)
	assert.Equal(t, 1, body.Rooms[0].Players)
	assert.Equal(t, 8, body.Rooms[0].MaxPlayers)
	assert.False(t, body.Rooms[0].GameStarted)
}

func TestRoomsMethodNotAllowed(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/rooms", nil)
	rec := httptest.NewRecorder()
	RoomsHandler(s)(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIdentityIssueAndReuse(t *testing.T) {
	auth.Init()
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/identity", nil)
	rec := httptest.NewRecorder()
	IdentityHandler(s)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["token"])

	issuedID, err := uuid.Parse(body["userId"])
	require.NoError(t, err)

	verified, err := auth.VerifyIdentityToken(body["token"])
	require.NoError(t, err)
	assert.Equal(t, issuedID.String(), verified)

	// Presenting the cookie keeps the same identity.
	req2 := httptest.NewRequest(http.MethodGet, "/identity", nil)
	req2.AddCookie(&http.Cookie{Name: "auth_token", Value: body["token"]})
	rec2 := httptest.NewRecorder()
	IdentityHandler(s)(rec2, req2)

	var body2 map[string]string
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &body2))
	assert.Equal(t, body["userId"], body2["userId"])
}

func TestExtractCookieToken(t *testing.T) {
	assert.Equal(t, "abc", extractCookieToken("auth_token=abc", "auth_token"))
	assert.Equal(t, "abc", extractCookieToken("other=x; auth_token=abc; more=y", "auth_token"))
	assert.Equal(t, "", extractCookieToken("other=x", "auth_token"))
}
