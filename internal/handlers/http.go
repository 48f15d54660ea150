// internal/handlers/http.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/drawdash/drawdash/internal/auth"
)

// IdentityHandler ensures the caller holds a signed identity token, minting
// one (and a fresh user id) when the cookie is absent or invalid. The token
// is what lets a reconnecting client resume its score.
func IdentityHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := uuid.Nil
		if cookie, err := r.Cookie("auth_token"); err == nil {
			if idStr, verr := auth.VerifyIdentityToken(cookie.Value); verr == nil {
				if id, perr := uuid.Parse(idStr); perr == nil {
					userID = id
				}
			}
		}
		if userID == uuid.Nil {
			userID = uuid.New()
		}

		token, err := auth.CreateIdentityToken(userID.String())
		if err != nil {
			s.Logger.Errorf("Failed to create identity token: %v", err)
			http.Error(w, "failed to create token", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"userId": userID.String(),
			"token":  token,
		})
	}
}

// roomSummary is one row of the room listing.
type roomSummary struct {
	RoomID      string    `json:"roomId"`
	Players     int       `json:"players"`
	MaxPlayers  int       `json:"maxPlayers"`
	GameStarted bool      `json:"gameStarted"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RoomsHandler lists the open rooms.
func RoomsHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		rooms := s.Registry.List()
		out := make([]roomSummary, 0, len(rooms))
		for _, rm := range rooms {
			players := 0
			if sess, ok := s.Sessions.Get(rm.ID); ok {
				players = sess.MemberCount()
			}
			out = append(out, roomSummary{
				RoomID:      rm.ID,
				Players:     players,
				MaxPlayers:  rm.Settings.MaxPlayers,
				GameStarted: rm.GameStarted,
				CreatedAt:   rm.CreatedAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"rooms": out})
	}
}

// HealthzHandler reports liveness.
func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
