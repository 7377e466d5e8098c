package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/poker-night-backend/internal/hub"
	"github.com/DoyleJ11/poker-night-backend/internal/types"
)

const codeAttempts = 16

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateLobby mints a room code nobody is using. The table itself is created
// when the first player joins over the websocket.
func CreateLobby(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for attempt := 0; attempt < codeAttempts; attempt++ {
			code, err := GenerateCode()
			if err != nil {
				log.Error("generate room code", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "Internal")
				return
			}
			_, err = h.Lookup(r.Context(), code)
			switch {
			case errors.Is(err, hub.ErrUnknownRoom):
				writeJSON(w, http.StatusCreated, struct {
					Code string `json:"code"`
				}{Code: code})
				return
			case err != nil:
				writeError(w, http.StatusServiceUnavailable, "Unavailable")
				return
			}
			log.Debug("collision on code, regenerating", zap.String("room", code))
		}
		writeError(w, http.StatusServiceUnavailable, "Unavailable")
	}
}

func GetLobby(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		lb, err := h.Lookup(r.Context(), code)
		if err != nil {
			writeError(w, http.StatusNotFound, "UnknownRoom")
			return
		}
		v, err := lb.View(r.Context())
		if err != nil {
			// Closed between Lookup and View.
			writeError(w, http.StatusNotFound, "UnknownRoom")
			return
		}
		writeJSON(w, http.StatusOK, types.NewTableView(v.Code, v.Version, v.NumClients, v.State))
	}
}

func Healthz(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.Count(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "Unavailable")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Status string `json:"status"`
			Rooms  int    `json:"rooms"`
		}{Status: "ok", Rooms: n})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: code})
}
