package engine

import "errors"

// ErrInsufficientData signals that an analyzer's precondition was not met
// (e.g. a mood-trend request with fewer than three entries). It is distinct
// from collaborator I/O failures: orchestration methods catch it and skip
// the analysis rather than failing the run.
var ErrInsufficientData = errors.New("insufficient data for analysis")

// ErrNoActiveSchedule signals that a user has no active smart schedule.
var ErrNoActiveSchedule = errors.New("no active schedule")
