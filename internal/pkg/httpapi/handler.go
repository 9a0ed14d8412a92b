package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/securitas-community/securitas-bridge/internal/pkg/logging"
	"github.com/securitas-community/securitas-bridge/internal/pkg/securitas"
)

// AlarmHandler exposes the alarm client to the hub as a small JSON API.
type AlarmHandler struct {
	api              securitas.AlarmAPI
	operationTimeout time.Duration

	// Installations are cached because the capability token lives on
	// the Installation value and is refreshed in place.  The per-entry
	// mutex serialises panel operations per installation; concurrent
	// commands against the same panel would race on currentStatus.
	mu      sync.Mutex
	entries map[string]*installationEntry
}

type installationEntry struct {
	mu   sync.Mutex
	inst *securitas.Installation
}

func NewAlarmHandler(api securitas.AlarmAPI, operationTimeout time.Duration) *AlarmHandler {
	if operationTimeout <= 0 {
		operationTimeout = securitas.DefaultOperationTimeout
	}

	return &AlarmHandler{
		api:              api,
		operationTimeout: operationTimeout,
		entries:          make(map[string]*installationEntry),
	}
}

// Routes registers the API endpoints on the router.
func (h *AlarmHandler) Routes(r *mux.Router) {
	r.HandleFunc("/installations", h.listInstallations).Methods(http.MethodGet)
	r.HandleFunc("/installations/{numinst}/services", h.listServices).Methods(http.MethodGet)
	r.HandleFunc("/installations/{numinst}/status", h.generalStatus).Methods(http.MethodGet)
	r.HandleFunc("/installations/{numinst}/check", h.checkAlarm).Methods(http.MethodPost)
	r.HandleFunc("/installations/{numinst}/arm", h.armAlarm).Methods(http.MethodPost)
	r.HandleFunc("/installations/{numinst}/disarm", h.disarmAlarm).Methods(http.MethodPost)
	r.HandleFunc("/installations/{numinst}/lock", h.changeLock(true)).Methods(http.MethodPost)
	r.HandleFunc("/installations/{numinst}/unlock", h.changeLock(false)).Methods(http.MethodPost)
}

func (h *AlarmHandler) sendJSONResponse(w http.ResponseWriter, r *http.Request, status int, d interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	if err := enc.Encode(d); err != nil {
		logging.Logger(r.Context()).WithError(err).Error("sending json response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusForError(err error) int {
	var loginErr *securitas.LoginError
	var timeoutErr *securitas.OperationTimeoutError
	var connErr *securitas.ConnectionError

	switch {
	case errors.As(err, &loginErr):
		return http.StatusUnauthorized
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &connErr):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func (h *AlarmHandler) sendError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Logger(r.Context()).WithError(err).Error("alarm API request failed")
	h.sendJSONResponse(w, r, statusForError(err), errorResponse{Error: err.Error()})
}

// refreshEntries re-reads the installation list, keeping existing
// entries (and their capability tokens) for installations we already
// know about.
func (h *AlarmHandler) refreshEntries(r *http.Request) ([]securitas.Installation, error) {
	installations, err := h.api.ListInstallations(r.Context())
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	for i := range installations {
		if _, ok := h.entries[installations[i].Number]; !ok {
			inst := installations[i]
			h.entries[inst.Number] = &installationEntry{inst: &inst}
		}
	}
	h.mu.Unlock()

	return installations, nil
}

func (h *AlarmHandler) entry(r *http.Request) (*installationEntry, bool) {
	numinst := mux.Vars(r)["numinst"]

	h.mu.Lock()
	e, ok := h.entries[numinst]
	h.mu.Unlock()
	if ok {
		return e, true
	}

	// Unknown installation: maybe the list is stale
	if _, err := h.refreshEntries(r); err != nil {
		return nil, false
	}

	h.mu.Lock()
	e, ok = h.entries[numinst]
	h.mu.Unlock()

	return e, ok
}

func (h *AlarmHandler) listInstallations(w http.ResponseWriter, r *http.Request) {
	installations, err := h.refreshEntries(r)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	h.sendJSONResponse(w, r, http.StatusOK, installations)
}

func (h *AlarmHandler) listServices(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	e.mu.Lock()
	services, err := h.api.GetAllServices(r.Context(), e.inst)
	e.mu.Unlock()
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	h.sendJSONResponse(w, r, http.StatusOK, services)
}

func (h *AlarmHandler) generalStatus(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	e.mu.Lock()
	status, err := h.api.CheckGeneralStatus(r.Context(), e.inst)
	e.mu.Unlock()
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	h.sendJSONResponse(w, r, http.StatusOK, status)
}

func (h *AlarmHandler) checkAlarm(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	referenceID, err := h.api.CheckAlarm(r.Context(), e.inst)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	status, err := h.api.CheckAlarmStatus(r.Context(), e.inst, referenceID, h.operationTimeout)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	h.sendJSONResponse(w, r, http.StatusOK, status)
}

type armRequest struct {
	Mode string `json:"mode"`
}

func (h *AlarmHandler) armAlarm(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var req armRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendJSONResponse(w, r, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	state, err := securitas.ParseAlarmState(req.Mode)
	if err != nil {
		h.sendJSONResponse(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	e.mu.Lock()
	status, err := h.api.ArmAlarm(r.Context(), e.inst, state, h.operationTimeout)
	e.mu.Unlock()
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	h.sendJSONResponse(w, r, http.StatusOK, status)
}

func (h *AlarmHandler) disarmAlarm(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entry(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	e.mu.Lock()
	status, err := h.api.DisarmAlarm(r.Context(), e.inst, h.operationTimeout)
	e.mu.Unlock()
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	h.sendJSONResponse(w, r, http.StatusOK, status)
}

func (h *AlarmHandler) changeLock(lock bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := h.entry(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		e.mu.Lock()
		status, err := h.api.ChangeLockMode(r.Context(), e.inst, lock, h.operationTimeout)
		e.mu.Unlock()
		if err != nil {
			h.sendError(w, r, err)
			return
		}

		h.sendJSONResponse(w, r, http.StatusOK, status)
	}
}
