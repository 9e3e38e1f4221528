package handlers

type selfAssignRequest struct {
	RouteID int64 `json:"route_id"`
}

type completePointRequest struct {
	PhotoRef string `json:"photo_ref,omitempty"`
}

type dispatchAssignRequest struct {
	RouteID  int64 `json:"route_id"`
	DriverID int64 `json:"driver_id"`
}

type assignmentResponse struct {
	RouteID   int64  `json:"route_id"`
	RouteName string `json:"route_name"`
}

type availableRouteDTO struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	Description       *string  `json:"description,omitempty"`
	PointsCount       int      `json:"points_count"`
	EstimatedDuration *int     `json:"estimated_duration,omitempty"`
	TotalDistance     *float64 `json:"total_distance,omitempty"`
}

type pointViewDTO struct {
	ID        int64  `json:"id"`
	Sequence  int    `json:"sequence"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Completed bool   `json:"completed"`
	PhotoRef  string `json:"photo_ref,omitempty"`
}

type progressDTO struct {
	Completed   int     `json:"completed"`
	Total       int     `json:"total"`
	Fraction    float64 `json:"fraction"`
	AllComplete bool    `json:"all_complete"`
}

type routeViewResponse struct {
	RouteID   int64          `json:"route_id"`
	RouteName string         `json:"route_name"`
	Points    []pointViewDTO `json:"points"`
	Progress  progressDTO    `json:"progress"`
}

type finishResponse struct {
	RouteID           int64  `json:"route_id"`
	DeliveriesCreated int    `json:"deliveries_created"`
	DeliveriesFailed  int    `json:"deliveries_failed"`
	Warning           string `json:"warning,omitempty"`
}
