package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pontual-runner/internal/apperr"
	"pontual-runner/internal/logx"
)

// DispatchHandler exposes the dispatcher-side flows: the authoritative remote
// route assignment and the read-only progress views.
type DispatchHandler struct {
	gateway  dispatchGateway
	progress progressReader
	logger   logx.Logger
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(logger logx.Logger, gw dispatchGateway, progress progressReader) *DispatchHandler {
	return &DispatchHandler{gateway: gw, progress: progress, logger: logger}
}

// AssignRoute handles POST /routes/assign: remote, authoritative assignment
// of a route to a driver.
func (h *DispatchHandler) AssignRoute(w http.ResponseWriter, r *http.Request) {
	var req dispatchAssignRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	if req.RouteID <= 0 || req.DriverID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid input")
		return
	}

	route, err := h.gateway.Assign(r.Context(), req.RouteID, req.DriverID)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, route)
}

// DriverRoutes handles GET /drivers/{id}/routes.
func (h *DispatchHandler) DriverRoutes(w http.ResponseWriter, r *http.Request) {
	driverID, err := idFromURL(r, "id")
	if err != nil {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid driver id")
		return
	}

	routes, err := h.gateway.ListForDriver(r.Context(), driverID)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, routes)
}

// DeliveryProgress handles GET /deliveries/progress?route_id=N.
func (h *DispatchHandler) DeliveryProgress(w http.ResponseWriter, r *http.Request) {
	routeID, err := strconv.ParseInt(r.URL.Query().Get("route_id"), 10, 64)
	if err != nil || routeID <= 0 {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid route id")
		return
	}

	progress, err := h.progress.Progress(r.Context(), routeID)
	if err != nil {
		h.writeGatewayError(w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, progress)
}

func (h *DispatchHandler) writeGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	var remote *apperr.RemoteError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeError(h.logger, w, r, http.StatusNotFound, "not found")
	case apperr.IsTransport(err):
		writeError(h.logger, w, r, http.StatusBadGateway, "server unreachable")
	case errors.As(err, &remote):
		writeError(h.logger, w, r, http.StatusBadGateway, "backend error")
	default:
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}
