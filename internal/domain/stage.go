package domain

import "fmt"

// Stage is a point in a route unit's remote workflow.
type Stage int

const (
	StagePending Stage = iota
	StageInitialized
	StageWritable
	StageStopsUploaded
	StageOptimized
	StageDistributed
)

var stageNames = [...]string{
	StagePending:       "PENDING",
	StageInitialized:   "INITIALIZED",
	StageWritable:      "WRITABLE",
	StageStopsUploaded: "STOPS_UPLOADED",
	StageOptimized:     "OPTIMIZED",
	StageDistributed:   "DISTRIBUTED",
}

func (s Stage) String() string {
	if s < StagePending || s > StageDistributed {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// TransitionError is returned when a status change would skip a stage,
// move backwards, or leave the halted state.
type TransitionError struct {
	From   Stage
	To     Stage
	Halted bool
}

func (e *TransitionError) Error() string {
	if e.Halted {
		return fmt.Sprintf("illegal transition %s -> %s: unit is halted", e.From, e.To)
	}
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// StageStatus tracks how far a route unit has progressed.
// The zero value is PENDING. The only way forward is Advance to the next
// stage, so the flags derived from it are monotonic. Halt is absorbing.
type StageStatus struct {
	reached    Stage
	halted     bool
	haltReason string
}

// Advance moves the status to the stage directly after the current one.
func (s *StageStatus) Advance(to Stage) error {
	if s.halted || to != s.reached+1 || to > StageDistributed {
		return &TransitionError{From: s.reached, To: to, Halted: s.halted}
	}
	s.reached = to
	return nil
}

// Halt stops the unit at its current stage. A second Halt keeps the first reason.
func (s *StageStatus) Halt(reason string) error {
	if s.reached == StageDistributed {
		return &TransitionError{From: s.reached, To: s.reached}
	}
	if s.halted {
		return nil
	}
	s.halted = true
	s.haltReason = reason
	return nil
}

// Ready reports whether the unit may attempt stage next.
func (s StageStatus) Ready(next Stage) bool {
	return !s.halted && s.reached+1 == next
}

func (s StageStatus) Reached() Stage     { return s.reached }
func (s StageStatus) Halted() bool       { return s.halted }
func (s StageStatus) HaltReason() string { return s.haltReason }

// Flags expands the status into one boolean per stage.
func (s StageStatus) Flags() StageFlags {
	return StageFlags{
		Initialized:   s.reached >= StageInitialized,
		Writable:      s.reached >= StageWritable,
		StopsUploaded: s.reached >= StageStopsUploaded,
		Optimized:     s.reached >= StageOptimized,
		Distributed:   s.reached >= StageDistributed,
	}
}

// StageFlags is the tabular form of a StageStatus.
type StageFlags struct {
	Initialized   bool
	Writable      bool
	StopsUploaded bool
	Optimized     bool
	Distributed   bool
}

// Slice returns the flags in stage order.
func (f StageFlags) Slice() []bool {
	return []bool{f.Initialized, f.Writable, f.StopsUploaded, f.Optimized, f.Distributed}
}

// Monotonic reports whether no flag is true after a false one.
func (f StageFlags) Monotonic() bool {
	seenFalse := false
	for _, v := range f.Slice() {
		if v && seenFalse {
			return false
		}
		if !v {
			seenFalse = true
		}
	}
	return true
}

// Reached returns the last stage whose flag is set, assuming monotonic flags.
func (f StageFlags) Reached() Stage {
	reached := StagePending
	for i, v := range f.Slice() {
		if !v {
			break
		}
		reached = Stage(i + 1)
	}
	return reached
}

// FlagsThrough returns flags set for every stage up to and including s.
func FlagsThrough(s Stage) StageFlags {
	return StageStatus{reached: s}.Flags()
}
