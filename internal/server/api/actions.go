package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/horizonmoine/bballcoach-ai-v2-dev/internal/store"
)

// ActionHandler serves cue bindings. A binding routes one coaching cue to a
// plugin action instead of the default voice.
//
//	GET    /api/actions[?cue=bend_legs]
//	POST   /api/actions
//	GET    /api/actions/{id}
//	PUT    /api/actions/{id}
//	DELETE /api/actions/{id}
type ActionHandler struct {
	store    *store.Store
	validate *validator.Validate
}

// NewActionHandler creates a new ActionHandler with the given store.
func NewActionHandler(s *store.Store) *ActionHandler {
	return &ActionHandler{store: s, validate: newValidator()}
}

func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/actions"), "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case id == "" && r.Method == http.MethodPost:
		h.create(w, r)
	case id != "" && r.Method == http.MethodGet:
		if a, ok := h.find(w, id); ok {
			writeJSON(w, http.StatusOK, toActionResponse(a))
		}
	case id != "" && r.Method == http.MethodPut:
		h.update(w, r, id)
	case id != "" && r.Method == http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createActionRequest struct {
	Cue        string          `json:"cue" validate:"required,cue"`
	PluginName string          `json:"plugin_name" validate:"required"`
	ActionName string          `json:"action_name" validate:"required"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

// updateActionRequest changes only the fields that are present.
type updateActionRequest struct {
	Cue        string          `json:"cue" validate:"omitempty,cue"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

func (req updateActionRequest) apply(a *store.Action) {
	if req.Cue != "" {
		a.Cue = req.Cue
	}
	if req.PluginName != "" {
		a.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		a.ActionName = req.ActionName
	}
	if req.Config != nil {
		a.Config = req.Config
	}
	if req.Enabled != nil {
		a.Enabled = *req.Enabled
	}
}

type actionResponse struct {
	ID         string          `json:"id"`
	Cue        string          `json:"cue"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listActionsResponse struct {
	Actions []actionResponse `json:"actions"`
}

func toActionResponse(a *store.Action) actionResponse {
	return actionResponse{
		ID:         a.ID,
		Cue:        a.Cue,
		PluginName: a.PluginName,
		ActionName: a.ActionName,
		Config:     orEmptyObject(a.Config),
		Enabled:    a.Enabled,
		CreatedAt:  formatTime(a.CreatedAt),
	}
}

func orEmptyObject(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	return raw
}

func (h *ActionHandler) list(w http.ResponseWriter, r *http.Request) {
	resp := listActionsResponse{Actions: []actionResponse{}}

	if cue := r.URL.Query().Get("cue"); cue != "" {
		a, err := h.store.Actions().GetByCue(cue)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list actions")
			return
		}
		if a != nil {
			resp.Actions = append(resp.Actions, toActionResponse(a))
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	actions, err := h.store.Actions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list actions")
		return
	}
	for _, a := range actions {
		resp.Actions = append(resp.Actions, toActionResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// find loads a binding and writes the error response when it cannot.
func (h *ActionHandler) find(w http.ResponseWriter, id string) (*store.Action, bool) {
	a, err := h.store.Actions().GetByID(id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Action not found")
		return nil, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to get action")
		return nil, false
	}
	return a, true
}

func (h *ActionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	if !h.cueFree(w, req.Cue, "") {
		return
	}

	a := &store.Action{
		ID:         uuid.New().String(),
		Cue:        req.Cue,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     orEmptyObject(req.Config),
		Enabled:    req.Enabled == nil || *req.Enabled,
	}
	if err := h.store.Actions().Create(a); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create action")
		return
	}
	writeJSON(w, http.StatusCreated, toActionResponse(a))
}

func (h *ActionHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	a, ok := h.find(w, id)
	if !ok {
		return
	}

	var req updateActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}
	if req.Cue != "" && req.Cue != a.Cue && !h.cueFree(w, req.Cue, a.ID) {
		return
	}

	req.apply(a)
	if err := h.store.Actions().Update(a); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update action")
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(a))
}

// cueFree reports whether cue is unbound or bound to the action with id
// self. It writes the error response otherwise.
func (h *ActionHandler) cueFree(w http.ResponseWriter, cue, self string) bool {
	existing, err := h.store.Actions().GetByCue(cue)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check existing action")
		return false
	}
	if existing != nil && existing.ID != self {
		writeError(w, http.StatusConflict, "Action already bound to this cue")
		return false
	}
	return true
}

func (h *ActionHandler) delete(w http.ResponseWriter, id string) {
	err := h.store.Actions().Delete(id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Action not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to delete action")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
