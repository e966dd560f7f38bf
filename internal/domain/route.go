package domain

// Represents one driver's set of stops pushed through the remote workflow.
// A RouteUnit is built fresh from the chunked input on every run. Its Driver
// is nil until the operator confirms a mapping; PlanID is empty until the
// routing service accepts the plan.
type RouteUnit struct {
	Title      string
	Label      string
	DriverName string
	DateToken  string
	Stops      []ChunkedStop
	Driver     *Driver
	PlanID     string
	Status     StageStatus
}

// StatusRow is the persisted outcome of one route unit.
type StatusRow struct {
	Title      string
	RunID      string
	PlanID     string
	DriverID   string
	Flags      StageFlags
	HaltReason string
}

// Row captures the unit's current status for reporting.
func (u *RouteUnit) Row(runID string) StatusRow {
	row := StatusRow{
		Title:      u.Title,
		RunID:      runID,
		PlanID:     u.PlanID,
		Flags:      u.Status.Flags(),
		HaltReason: u.Status.HaltReason(),
	}
	if u.Driver != nil {
		row.DriverID = u.Driver.ID
	}
	return row
}
