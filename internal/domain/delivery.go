package domain

import "time"

// DeliveryStatus is the backend-owned lifecycle of a delivery record.
type DeliveryStatus string

// Delivery statuses as the backend reports them.
const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryInProgress DeliveryStatus = "in_progress"
	DeliveryCompleted  DeliveryStatus = "completed"
	DeliveryFailed     DeliveryStatus = "failed"
	DeliveryCancelled  DeliveryStatus = "cancelled"
)

// Delivery is a backend delivery record, created once per stop when a route
// finishes.
type Delivery struct {
	ID                   int64          `json:"id"`
	RouteID              int64          `json:"route_id"`
	RouteName            string         `json:"route_name"`
	DriverID             *int64         `json:"driver_id,omitempty"`
	DriverName           *string        `json:"driver_name,omitempty"`
	DeliveryPointID      int64          `json:"delivery_point_id"`
	DeliveryPointName    string         `json:"delivery_point_name"`
	DeliveryPointAddress string         `json:"delivery_point_address"`
	Status               DeliveryStatus `json:"status"`
	ScheduledDate        string         `json:"scheduled_date"`
	CompletedDate        *string        `json:"completed_date,omitempty"`
	Notes                *string        `json:"notes,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// DeliveryRequest is the outbound payload for delivery creation. Owned by the
// backend once submitted.
type DeliveryRequest struct {
	RouteID       int64  `json:"route_id"`
	DriverID      *int64 `json:"driver_id"`
	ScheduledDate string `json:"scheduled_date"`
	Notes         string `json:"notes"`
}

// DeliveryProgress is the backend's view of how far along a delivery is.
type DeliveryProgress struct {
	DeliveryID         int64   `json:"delivery_id"`
	RouteID            int64   `json:"route_id"`
	RouteName          string  `json:"route_name"`
	DriverID           int64   `json:"driver_id"`
	DriverName         string  `json:"driver_name"`
	TotalPoints        int     `json:"total_points"`
	CompletedPoints    int     `json:"completed_points"`
	ProgressPercentage float64 `json:"progress_percentage"`
	Status             string  `json:"status"`
	StartedAt          string  `json:"started_at"`
	CompletedAt        *string `json:"completed_at,omitempty"`
}
