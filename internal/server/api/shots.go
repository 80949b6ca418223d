package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/store"
)

// ShotsHandler handles HTTP requests for the shots of a session.
type ShotsHandler struct {
	store *store.Store
}

// NewShotsHandler creates a new ShotsHandler with the given store.
func NewShotsHandler(s *store.Store) *ShotsHandler {
	return &ShotsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/sessions/{id}/shots
func (h *ShotsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[0] == "" || parts[1] != "shots" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.list(w, r, parts[0])
}

type shotResponse struct {
	Seq          int     `json:"seq"`
	Score        int     `json:"score"`
	JumpHeightCM float64 `json:"jump_height_cm"`
	Explosivity  int     `json:"explosivity"`
	Stability    int     `json:"stability"`
	ElbowAngle   float64 `json:"elbow_angle"`
	KneeAngle    float64 `json:"knee_angle"`
	ReleaseAngle float64 `json:"release_angle"`
	Phase        string  `json:"phase"`
	TakenAt      string  `json:"taken_at"`
}

type listShotsResponse struct {
	SessionID string         `json:"session_id"`
	Shots     []shotResponse `json:"shots"`
}

func toShotResponse(sh *store.Shot) shotResponse {
	return shotResponse{
		Seq:          sh.Seq,
		Score:        sh.Score,
		JumpHeightCM: sh.JumpHeightCM,
		Explosivity:  sh.Explosivity,
		Stability:    sh.Stability,
		ElbowAngle:   sh.ElbowAngle,
		KneeAngle:    sh.KneeAngle,
		ReleaseAngle: sh.ReleaseAngle,
		Phase:        sh.Phase,
		TakenAt:      formatTime(sh.TakenAt),
	}
}

// list handles GET /api/sessions/{id}/shots and returns shots in release order.
func (h *ShotsHandler) list(w http.ResponseWriter, r *http.Request, sessionID string) {
	// Verify session exists
	if _, err := h.store.Sessions().GetByID(sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	shots, err := h.store.Shots().ListBySession(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shots")
		return
	}

	response := listShotsResponse{
		SessionID: sessionID,
		Shots:     make([]shotResponse, 0, len(shots)),
	}
	for _, sh := range shots {
		response.Shots = append(response.Shots, toShotResponse(sh))
	}

	writeJSON(w, http.StatusOK, response)
}
