package models

import (
	"time"

	"github.com/hellocabs/hellocabs/internal/lifecycle"
)

type Ride struct {
	ID                 int64              `db:"id" json:"id"`
	BookingRef         string             `db:"booking_ref" json:"booking_ref"`
	CustomerID         int64              `db:"customer_id" json:"customer_id"`
	PickupLocationID   int64              `db:"pickup_location_id" json:"pickup_location_id"`
	DropLocationID     int64              `db:"drop_location_id" json:"drop_location_id"`
	CabID              *int64             `db:"cab_id" json:"cab_id,omitempty"`
	PassengerMobile    string             `db:"passenger_mobile" json:"passenger_mobile"`
	Status             lifecycle.Status   `db:"status" json:"status"`
	BookedAt           time.Time          `db:"booked_at" json:"booked_at"`
	PickedAt           *time.Time         `db:"picked_at" json:"picked_at,omitempty"`
	DroppedAt          *time.Time         `db:"dropped_at" json:"dropped_at,omitempty"`
	Feedback           *string            `db:"feedback" json:"feedback,omitempty"`
	Rating             *float64           `db:"rating" json:"rating,omitempty"`
	CancelledBy        *string            `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancellationReason *string            `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	IdempotencyKey     *string            `db:"idempotency_key" json:"idempotency_key,omitempty"`
	Version            int64              `db:"version" json:"-"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

type BookRideRequest struct {
	CustomerID       int64  `json:"customer_id" validate:"required,gt=0"`
	PickupLocationID int64  `json:"pickup_location_id" validate:"required,gt=0"`
	DropLocationID   int64  `json:"drop_location_id" validate:"required,gt=0"`
	PassengerMobile  string `json:"passenger_mobile" validate:"required,len=10,numeric"`
}

type UpdateRideStatusRequest struct {
	Status string `json:"status" validate:"required"`
	// Optional event time; the server clock is used when absent.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type CancelRideRequest struct {
	Reason      string `json:"reason" validate:"required"`
	CancelledBy string `json:"cancelled_by,omitempty" validate:"omitempty,oneof=passenger driver"`
}

type FeedbackRequest struct {
	Feedback string  `json:"feedback" validate:"required"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=5"`
}

type RideResponse struct {
	ID              int64             `json:"id"`
	BookingRef      string            `json:"booking_ref"`
	Status          lifecycle.Status  `json:"status"`
	Pickup          *LocationResponse `json:"pickup,omitempty"`
	Drop            *LocationResponse `json:"drop,omitempty"`
	Cab             *CabResponse      `json:"cab,omitempty"`
	PassengerMobile string            `json:"passenger_mobile"`
	BookedAt        time.Time         `json:"booked_at"`
	PickedAt        *time.Time        `json:"picked_at,omitempty"`
	DroppedAt       *time.Time        `json:"dropped_at,omitempty"`
	Feedback        *string           `json:"feedback,omitempty"`
	Rating          *float64          `json:"rating,omitempty"`
}

func (r *Ride) ToResponse() *RideResponse {
	return &RideResponse{
		ID:              r.ID,
		BookingRef:      r.BookingRef,
		Status:          r.Status,
		PassengerMobile: r.PassengerMobile,
		BookedAt:        r.BookedAt,
		PickedAt:        r.PickedAt,
		DroppedAt:       r.DroppedAt,
		Feedback:        r.Feedback,
		Rating:          r.Rating,
	}
}

// IsActive returns true if the ride is not in a terminal state
func (r *Ride) IsActive() bool {
	return !lifecycle.Terminal(r.Status)
}
