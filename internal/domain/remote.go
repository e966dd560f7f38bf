package domain

import "time"

// Plan is the routing service's unit of work as returned by a fetch.
// Plans embed the ids of their routes and drivers.
type Plan struct {
	ID        string
	Title     string
	Starts    time.Time
	RouteIDs  []string
	DriverIDs []string
	Writable  bool
}

// Route is a route record embedded in fetched stops. It refers back to its plan.
type Route struct {
	ID        string
	Title     string
	PlanID    string
	DriverID  string
	StopCount int
}

// Stop is a fetched stop record. Position 0 is the depot.
// OrderCount is zero when the service has no value for it.
type Stop struct {
	ID           string
	PlanID       string
	RouteID      string
	Position     int
	Name         string
	Phone        string
	Email        string
	Notes        string
	FullAddress  string
	AddressLine1 string
	AddressLine2 string
	PlaceID      string
	Neighborhood string
	BoxType      string
	OrderCount   int
}

// ManifestRow is one reconciled stop with its route and driver resolved.
type ManifestRow struct {
	PlanID       string
	RouteID      string
	RouteTitle   string
	DriverID     string
	DriverName   string
	StopNo       int
	Name         string
	Address      string
	Phone        string
	Email        string
	Notes        string
	OrderCount   int
	BoxType      string
	Neighborhood string
}
