package dto

type StatusResponse struct {
	Title         string `json:"title"`
	RunID         string `json:"run_id,omitempty"`
	PlanID        string `json:"plan_id,omitempty"`
	DriverID      string `json:"driver_id,omitempty"`
	Initialized   bool   `json:"initialized"`
	Writable      bool   `json:"writable"`
	StopsUploaded bool   `json:"stops_uploaded"`
	Optimized     bool   `json:"optimized"`
	Distributed   bool   `json:"distributed"`
	HaltReason    string `json:"halt_reason,omitempty"`
}

type ListStatusesResponse struct {
	Statuses []StatusResponse `json:"statuses"`
}

type SummaryResponse struct {
	Attempted   int      `json:"attempted"`
	Initialized int      `json:"initialized"`
	Writable    int      `json:"writable"`
	WithStops   int      `json:"with_stops"`
	Optimized   int      `json:"optimized"`
	Distributed int      `json:"distributed"`
	Line        string   `json:"line"`
	Incomplete  []string `json:"incomplete"`
}
