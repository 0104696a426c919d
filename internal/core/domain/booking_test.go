package domain

import (
	"errors"
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	h := func(n int) time.Time { return base.Add(time.Duration(n) * time.Hour) }

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical", h(1), h(2), true},
		{"shifted right", h(1).Add(30 * time.Minute), h(2).Add(30 * time.Minute), true},
		{"shifted left", h(0).Add(30 * time.Minute), h(1).Add(30 * time.Minute), true},
		{"contained", h(1).Add(15 * time.Minute), h(1).Add(45 * time.Minute), true},
		{"containing", h(0), h(3), true},
		{"touching end", h(2), h(3), false},
		{"touching start", h(0), h(1), false},
		{"disjoint", h(5), h(6), false},
	}

	existing := Booking{Start: h(1), End: h(2)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := existing.Overlaps(tt.start, tt.end); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.start, tt.end, existing.Start, existing.End); got != tt.want {
				t.Errorf("Overlaps() is not symmetric for %s", tt.name)
			}
		})
	}
}

func TestBookingStatus_Transitions(t *testing.T) {
	if !BookingStatusWaiting.CanTransitionTo(BookingStatusApproved) {
		t.Error("expected WAITING -> APPROVED to be allowed")
	}
	if !BookingStatusWaiting.CanTransitionTo(BookingStatusRejected) {
		t.Error("expected WAITING -> REJECTED to be allowed")
	}
	for _, from := range []BookingStatus{BookingStatusApproved, BookingStatusRejected} {
		if !from.IsTerminal() {
			t.Errorf("expected %s to be terminal", from)
		}
		for _, to := range []BookingStatus{BookingStatusWaiting, BookingStatusApproved, BookingStatusRejected} {
			if from.CanTransitionTo(to) {
				t.Errorf("unexpected transition %s -> %s", from, to)
			}
		}
	}
	if BookingStatus("CANCELED").IsValid() {
		t.Error("unexpected valid status CANCELED")
	}
}

func TestDecision(t *testing.T) {
	if Decision(true) != BookingStatusApproved {
		t.Error("expected approve to resolve to APPROVED")
	}
	if Decision(false) != BookingStatusRejected {
		t.Error("expected reject to resolve to REJECTED")
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrUserNotFound, ErrNotFound},
		{ErrItemNotFound, ErrNotFound},
		{ErrBookingNotFound, ErrNotFound},
		{ErrOwnerHasNoItems, ErrNotFound},
		{ErrSelfBooking, ErrValidation},
		{ErrItemUnavailable, ErrValidation},
		{ErrInvalidInterval, ErrValidation},
		{ErrNotOwner, ErrValidation},
		{ErrForbidden, ErrValidation},
		{ErrAlreadyResolved, ErrValidation},
		{ErrTimeOverlap, ErrConflict},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.kind) {
			t.Errorf("expected %q to be %q", tt.err, tt.kind)
		}
	}
	if errors.Is(ErrTimeOverlap, ErrValidation) {
		t.Error("overlap must be distinct from generic validation")
	}
}
