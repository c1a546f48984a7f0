package lifecycle

import (
	"testing"
	"time"

	apperrors "github.com/hellocabs/hellocabs/internal/errors"
)

var allStatuses = []Status{
	StatusRequested,
	StatusWaitingForConfirmation,
	StatusAccepted,
	StatusPicked,
	StatusCompleted,
	StatusCancelled,
}

func TestTransitionTable(t *testing.T) {
	allowed := map[Status]map[Status]bool{
		StatusRequested:              {StatusWaitingForConfirmation: true, StatusCancelled: true},
		StatusWaitingForConfirmation: {StatusAccepted: true, StatusCancelled: true},
		StatusAccepted:               {StatusPicked: true, StatusCancelled: true},
		StatusPicked:                 {StatusCompleted: true},
		StatusCompleted:              {},
		StatusCancelled:              {},
	}

	// Every (from, to) pair succeeds iff it appears in the table;
	// re-applying the current status is a no-op success.
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			changed, err := Transition(from, to)

			if from == to {
				if err != nil {
					t.Errorf("Transition(%s, %s): no-op re-apply should succeed, got %v", from, to, err)
				}
				if changed {
					t.Errorf("Transition(%s, %s): no-op re-apply should report changed=false", from, to)
				}
				continue
			}

			if allowed[from][to] {
				if err != nil {
					t.Errorf("Transition(%s, %s): want success, got %v", from, to, err)
				}
				if !changed {
					t.Errorf("Transition(%s, %s): want changed=true", from, to)
				}
			} else {
				if err == nil {
					t.Errorf("Transition(%s, %s): want rejection, got success", from, to)
				}
			}
		}
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
	}{
		{"empty target", StatusRequested, ""},
		{"unknown target", StatusRequested, "Flying"},
		{"lowercase target", StatusRequested, "cancelled"},
		{"empty source", "", StatusCancelled},
		{"unknown source", "Limbo", StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Transition(tt.from, tt.to); err == nil {
				t.Errorf("Transition(%q, %q): want error, got success", tt.from, tt.to)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range allStatuses {
		want := s == StatusCompleted || s == StatusCancelled
		if got := Terminal(s); got != want {
			t.Errorf("Terminal(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestValidateCancel(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		reason  string
		wantErr bool
	}{
		{"requested with reason", StatusRequested, "Too Long", false},
		{"waiting with reason", StatusWaitingForConfirmation, "changed my mind", false},
		{"accepted with reason", StatusAccepted, "driver too far", false},
		{"empty reason", StatusRequested, "", true},
		{"blank reason", StatusRequested, "   ", true},
		{"picked is locked", StatusPicked, "want out", true},
		{"already completed", StatusCompleted, "too late", true},
		{"already cancelled", StatusCancelled, "again", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCancel(tt.from, tt.reason)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCancel(%s, %q) = %v, wantErr %v", tt.from, tt.reason, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCancelEmptyReasonIsValidationError(t *testing.T) {
	err := ValidateCancel(StatusRequested, "")
	apiErr, ok := err.(*apperrors.APIError)
	if !ok {
		t.Fatalf("want *APIError, got %T", err)
	}
	if apiErr.Code != "bad_request" {
		t.Errorf("want bad_request, got %s", apiErr.Code)
	}
}

func TestValidateFeedback(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		rating  float64
		wantErr bool
	}{
		{"completed", StatusCompleted, 4.5, false},
		{"cancelled", StatusCancelled, 1.0, false},
		{"rating lower bound", StatusCompleted, 0, false},
		{"rating upper bound", StatusCompleted, 5, false},
		{"requested", StatusRequested, 4.5, true},
		{"accepted", StatusAccepted, 4.5, true},
		{"picked", StatusPicked, 4.5, true},
		{"rating too high", StatusCompleted, 5.5, true},
		{"rating negative", StatusCompleted, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeedback(tt.status, tt.rating)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFeedback(%s, %v) = %v, wantErr %v", tt.status, tt.rating, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFeedbackBeforeTerminalIsIllegalState(t *testing.T) {
	err := ValidateFeedback(StatusPicked, 4.0)
	apiErr, ok := err.(*apperrors.APIError)
	if !ok {
		t.Fatalf("want *APIError, got %T", err)
	}
	if apiErr.Code != "illegal_state" {
		t.Errorf("want illegal_state, got %s", apiErr.Code)
	}
}

func TestValidateAssign(t *testing.T) {
	tests := []struct {
		from    Status
		wantErr bool
	}{
		{StatusRequested, false},
		{StatusWaitingForConfirmation, false},
		{StatusAccepted, true},
		{StatusPicked, true},
		{StatusCompleted, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		err := ValidateAssign(tt.from)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateAssign(%s) = %v, wantErr %v", tt.from, err, tt.wantErr)
		}
	}
}

func TestCanAssignCab(t *testing.T) {
	tests := []struct {
		status CabStatus
		want   bool
	}{
		{CabAvailable, true},
		{CabAssigned, false},
		{CabUnavailable, false},
		{"", false},
	}

	for _, tt := range tests {
		if got := CanAssignCab(tt.status); got != tt.want {
			t.Errorf("CanAssignCab(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestValidCabStatus(t *testing.T) {
	for _, s := range []CabStatus{CabAvailable, CabAssigned, CabUnavailable} {
		if !ValidCabStatus(s) {
			t.Errorf("ValidCabStatus(%s) = false, want true", s)
		}
	}
	for _, s := range []CabStatus{"", "available", "Busy"} {
		if ValidCabStatus(s) {
			t.Errorf("ValidCabStatus(%q) = true, want false", s)
		}
	}
}

func TestTimestampGuards(t *testing.T) {
	booked := time.Date(2022, 11, 3, 19, 21, 57, 0, time.UTC)
	picked := booked.Add(30 * time.Minute)
	dropped := picked.Add(45 * time.Minute)

	if err := ValidatePickupTime(booked, picked); err != nil {
		t.Errorf("pickup after booking should pass, got %v", err)
	}
	if err := ValidatePickupTime(booked, booked); err != nil {
		t.Errorf("pickup equal to booking should pass, got %v", err)
	}
	if err := ValidatePickupTime(booked, booked.Add(-time.Minute)); err == nil {
		t.Error("pickup before booking should fail")
	}

	if err := ValidateDropTime(picked, dropped); err != nil {
		t.Errorf("drop after pickup should pass, got %v", err)
	}
	if err := ValidateDropTime(picked, picked.Add(-time.Second)); err == nil {
		t.Error("drop before pickup should fail")
	}
}
