package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"pontual-runner/internal/apperr"
	"pontual-runner/internal/logx"
)

// MyRouteHandler exposes the driver's self-service route execution flow. The
// engine itself takes no locks, so the handler serializes every operation,
// the same way the original screen disabled its buttons while a call was in
// flight.
type MyRouteHandler struct {
	usecase executionUsecase
	logger  logx.Logger
	mu      sync.Mutex
}

// NewMyRouteHandler creates a new MyRouteHandler.
func NewMyRouteHandler(logger logx.Logger, uc executionUsecase) *MyRouteHandler {
	return &MyRouteHandler{usecase: uc, logger: logger}
}

// Available handles GET /routes/available.
func (h *MyRouteHandler) Available(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	routes, err := h.usecase.AvailableRoutes(r.Context())
	h.mu.Unlock()
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, routesToAvailableDTOs(routes))
}

// Assign handles POST /my-route/assign: the driver picks an offered route.
func (h *MyRouteHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req selfAssignRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.RouteID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid route id")
		return
	}

	h.mu.Lock()
	assignment, err := h.usecase.SelfAssign(r.Context(), req.RouteID)
	h.mu.Unlock()
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(assignment))
}

// Get handles GET /my-route: the assigned route with per-point completion.
func (h *MyRouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	view, err := h.usecase.View(r.Context())
	h.mu.Unlock()
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, viewToResponse(view))
}

// CompletePoint handles POST /my-route/points/{id}/complete.
func (h *MyRouteHandler) CompletePoint(w http.ResponseWriter, r *http.Request) {
	pointID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid point id")
		return
	}
	var req completePointRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}

	h.mu.Lock()
	err = h.usecase.CompletePoint(r.Context(), pointID, req.PhotoRef)
	h.mu.Unlock()
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Progress handles GET /my-route/progress.
func (h *MyRouteHandler) Progress(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	progress, err := h.usecase.Progress(r.Context())
	h.mu.Unlock()
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, progressToDTO(progress))
}

// Finish handles POST /my-route/finish. Once the engine starts clearing local
// state the operation must not be interrupted, so the request context's
// cancellation is detached for the finish call.
func (h *MyRouteHandler) Finish(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	res, err := h.usecase.Finish(context.WithoutCancel(r.Context()))
	h.mu.Unlock()
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, finishToResponse(res))
}

func (h *MyRouteHandler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var remote *apperr.RemoteError
	switch {
	case errors.Is(err, apperr.ErrNotAssigned):
		writeError(h.logger, w, r, http.StatusNotFound, "no route assigned")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "route not found")
	case errors.Is(err, apperr.ErrPointNotInRoute):
		writeError(h.logger, w, r, http.StatusBadRequest, "point not in assigned route")
	case errors.Is(err, apperr.ErrRouteNotAllComplete):
		writeError(h.logger, w, r, http.StatusConflict, "complete all points before finishing")
	case errors.Is(err, apperr.ErrInvalid):
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, apperr.ErrPersistence):
		writeError(h.logger, w, r, http.StatusInternalServerError, "local state unavailable, progress may not be saved")
	case apperr.IsTransport(err):
		writeError(h.logger, w, r, http.StatusBadGateway, "server unreachable")
	case errors.As(err, &remote):
		writeError(h.logger, w, r, http.StatusBadGateway, "backend error")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
