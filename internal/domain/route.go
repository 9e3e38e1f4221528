package domain

import (
	"sort"
	"time"
)

// DeliveryPoint is a destination a route can stop at.
type DeliveryPoint struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// RoutePoint is one stop within a route. Sequence ranks points for traversal;
// uniqueness and contiguity of sequence values are not enforced client-side.
type RoutePoint struct {
	ID              int64         `json:"id"`
	RouteID         int64         `json:"route_id"`
	DeliveryPointID int64         `json:"delivery_point_id"`
	Sequence        int           `json:"sequence"`
	DeliveryPoint   DeliveryPoint `json:"delivery_point"`
}

// Route is an ordered collection of delivery stops assigned to at most one
// driver at a time. The backend is the system of record; the client fetches
// it read-only.
type Route struct {
	ID                int64        `json:"id"`
	Name              string       `json:"name"`
	Description       *string      `json:"description,omitempty"`
	Points            []RoutePoint `json:"points"`
	DriverID          *int64       `json:"driver_id,omitempty"`
	DriverName        *string      `json:"driver_name,omitempty"`
	EstimatedDuration *int         `json:"estimated_duration,omitempty"`
	TotalDistance     *float64     `json:"total_distance,omitempty"`
	IsActive          bool         `json:"is_active"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// OrderedPoints returns the route's points sorted by sequence ascending.
// Duplicate sequence values keep their relative order.
func (r Route) OrderedPoints() []RoutePoint {
	pts := make([]RoutePoint, len(r.Points))
	copy(pts, r.Points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Sequence < pts[j].Sequence })
	return pts
}

// HasPoint reports whether the given route-point id belongs to the route.
func (r Route) HasPoint(pointID int64) bool {
	for _, p := range r.Points {
		if p.ID == pointID {
			return true
		}
	}
	return false
}
