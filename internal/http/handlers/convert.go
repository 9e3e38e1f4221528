package handlers

import (
	"pontual-runner/internal/domain"
	"pontual-runner/internal/service/execution"
)

func assignmentToResponse(a domain.Assignment) assignmentResponse {
	return assignmentResponse{RouteID: a.RouteID, RouteName: a.RouteName}
}

func routesToAvailableDTOs(routes []domain.Route) []availableRouteDTO {
	out := make([]availableRouteDTO, 0, len(routes))
	for _, r := range routes {
		out = append(out, availableRouteDTO{
			ID:                r.ID,
			Name:              r.Name,
			Description:       r.Description,
			PointsCount:       len(r.Points),
			EstimatedDuration: r.EstimatedDuration,
			TotalDistance:     r.TotalDistance,
		})
	}
	return out
}

func progressToDTO(p domain.RouteProgress) progressDTO {
	return progressDTO{
		Completed:   p.Completed,
		Total:       p.Total,
		Fraction:    p.Fraction(),
		AllComplete: p.AllComplete(),
	}
}

func viewToResponse(v *execution.RouteView) routeViewResponse {
	points := make([]pointViewDTO, 0, len(v.Points))
	for _, p := range v.Points {
		points = append(points, pointViewDTO{
			ID:        p.Point.ID,
			Sequence:  p.Point.Sequence,
			Name:      p.Point.DeliveryPoint.Name,
			Address:   p.Point.DeliveryPoint.Address,
			Completed: p.Completed,
			PhotoRef:  p.PhotoRef,
		})
	}
	return routeViewResponse{
		RouteID:   v.Route.ID,
		RouteName: v.Route.Name,
		Points:    points,
		Progress:  progressToDTO(v.Progress),
	}
}

func finishToResponse(res execution.FinishResult) finishResponse {
	out := finishResponse{
		RouteID:           res.RouteID,
		DeliveriesCreated: res.Created,
		DeliveriesFailed:  res.Failed,
	}
	if res.Warning {
		out.Warning = "no deliveries could be recorded"
	}
	return out
}
