package domain

// Represents a driver account held by the routing service.
// Driver records are read-only to this system and are fetched once per run.
type Driver struct {
	ID     string
	Name   string
	Email  string
	Active bool
}

// StatusLabel is the roster text for the driver's activation state.
func (d Driver) StatusLabel() string {
	if d.Active {
		return "active"
	}
	return "INACTIVE"
}
