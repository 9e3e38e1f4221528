package domain

// Assignment is the device-local record of the route the driver is currently
// executing. At most one exists per device; it is never synchronized back to
// the backend as an object.
type Assignment struct {
	RouteID   int64
	RouteName string
}

// RouteProgress is the locally computed completion state for the assigned
// route.
type RouteProgress struct {
	Completed int
	Total     int
}

// Fraction returns completion as a value in [0, 1]. Zero for a zero-point
// route; AllComplete still holds there.
func (p RouteProgress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	f := float64(p.Completed) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// AllComplete reports whether every point of the route has been completed.
func (p RouteProgress) AllComplete() bool {
	return p.Completed >= p.Total
}
