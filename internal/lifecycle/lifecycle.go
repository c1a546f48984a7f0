// Package lifecycle owns the canonical ride and cab status sets and the
// legal ride transition table. Every status change in the system is
// validated here before it is persisted. The package performs no I/O and
// all calls are synchronous, so any host can wrap it.
package lifecycle

import (
	"strings"
	"time"

	apperrors "github.com/hellocabs/hellocabs/internal/errors"
)

// Status is a ride lifecycle stage. The set is closed: anything outside
// it, including the empty string, is rejected as a validation error.
type Status string

const (
	StatusRequested              Status = "Requested"
	StatusWaitingForConfirmation Status = "WaitingForConfirmation"
	StatusAccepted               Status = "Accepted"
	StatusPicked                 Status = "Picked"
	StatusCompleted              Status = "Completed"
	StatusCancelled              Status = "Cancelled"
)

// CabStatus is a cab availability stage.
type CabStatus string

const (
	CabAvailable   CabStatus = "Available"
	CabAssigned    CabStatus = "Assigned"
	CabUnavailable CabStatus = "Unavailable"
)

// Rating bounds for ride feedback.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Transitions is the legal ride transition table. Picked is locked
// except for completion; Completed and Cancelled are terminal.
var Transitions = map[Status][]Status{
	StatusRequested:              {StatusWaitingForConfirmation, StatusCancelled},
	StatusWaitingForConfirmation: {StatusAccepted, StatusCancelled},
	StatusAccepted:               {StatusPicked, StatusCancelled},
	StatusPicked:                 {StatusCompleted},
	StatusCompleted:              {},
	StatusCancelled:              {},
}

// Valid reports whether s is a member of the ride status set.
func Valid(s Status) bool {
	_, ok := Transitions[s]
	return ok
}

// ValidCabStatus reports whether s is a member of the cab status set.
func ValidCabStatus(s CabStatus) bool {
	return s == CabAvailable || s == CabAssigned || s == CabUnavailable
}

// Terminal reports whether s refuses all further transitions.
func Terminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the (from, to) pair appears in the
// transition table.
func CanTransition(from, to Status) bool {
	next, ok := Transitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates a requested status change. Re-applying the
// current status is a no-op success and reports changed=false.
func Transition(from, to Status) (changed bool, err error) {
	if !Valid(from) {
		return false, apperrors.BadRequest("ride has an unknown status " + statusLabel(from))
	}
	if to == "" {
		return false, apperrors.BadRequest("ride status must not be empty")
	}
	if !Valid(to) {
		return false, apperrors.BadRequest("unknown ride status " + statusLabel(to))
	}
	if to == from {
		return false, nil
	}
	if !CanTransition(from, to) {
		return false, apperrors.InvalidTransition(string(from), string(to))
	}
	return true, nil
}

// ValidatePickupTime enforces booked <= picked.
func ValidatePickupTime(bookedAt, pickedAt time.Time) error {
	if pickedAt.Before(bookedAt) {
		return apperrors.BadRequest("picked time cannot precede booked time")
	}
	return nil
}

// ValidateDropTime enforces picked <= dropped.
func ValidateDropTime(pickedAt, droppedAt time.Time) error {
	if droppedAt.Before(pickedAt) {
		return apperrors.BadRequest("drop time cannot precede picked time")
	}
	return nil
}

// ValidateCancel guards the transition to Cancelled. A reason is
// mandatory; Picked and the terminal states refuse cancellation.
func ValidateCancel(from Status, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apperrors.BadRequest("cancellation reason is required")
	}
	if !Valid(from) {
		return apperrors.BadRequest("ride has an unknown status " + statusLabel(from))
	}
	if !CanTransition(from, StatusCancelled) {
		return apperrors.InvalidTransition(string(from), string(StatusCancelled))
	}
	return nil
}

// ValidateFeedback allows feedback only once the ride has reached a
// terminal state, with the rating inside [MinRating, MaxRating].
func ValidateFeedback(s Status, rating float64) error {
	if !Terminal(s) {
		return apperrors.IllegalState("feedback is accepted only after the ride is completed or cancelled")
	}
	if rating < MinRating || rating > MaxRating {
		return apperrors.BadRequest("rating must be between 0 and 5")
	}
	return nil
}

// ValidateAssign guards the ride side of cab confirmation. A dispatcher
// may assign a cab straight from Requested, collapsing the driver-search
// hop; any later stage refuses assignment.
func ValidateAssign(from Status) error {
	if from == StatusRequested || from == StatusWaitingForConfirmation {
		return nil
	}
	return apperrors.InvalidTransition(string(from), string(StatusAccepted))
}

// CanAssignCab reports whether a cab in the given status may be paired
// with a ride. Only Available cabs qualify.
func CanAssignCab(s CabStatus) bool {
	return s == CabAvailable
}

func statusLabel(s Status) string {
	if s == "" {
		return `""`
	}
	return string(s)
}
