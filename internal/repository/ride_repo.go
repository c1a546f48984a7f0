package repository

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/hellocabs/hellocabs/internal/errors"
	"github.com/hellocabs/hellocabs/internal/lifecycle"
	"github.com/hellocabs/hellocabs/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id int64) (*models.Ride, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Ride, error)
	List(ctx context.Context) ([]*models.Ride, error)
	UpdateStatus(ctx context.Context, ride *models.Ride) error
	Cancel(ctx context.Context, ride *models.Ride) error
	AttachFeedback(ctx context.Context, ride *models.Ride) error
	GetActiveRideByCustomerID(ctx context.Context, customerID int64) (*models.Ride, error)
	GetActiveRideByCabID(ctx context.Context, cabID int64) (*models.Ride, error)
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*models.Ride, error)
}

type rideRepository struct {
	db *sqlx.DB
}

func NewRideRepository(db *sqlx.DB) RideRepository {
	return &rideRepository{db: db}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	if ride.BookingRef == "" {
		ride.BookingRef = uuid.New().String()
	}
	now := time.Now()
	ride.CreatedAt = now
	ride.UpdatedAt = now
	if ride.BookedAt.IsZero() {
		ride.BookedAt = now
	}
	ride.Status = lifecycle.StatusRequested
	ride.Version = 1

	query := `
		INSERT INTO rides (booking_ref, customer_id, pickup_location_id, drop_location_id,
			passenger_mobile, status, booked_at, idempotency_key, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		ride.BookingRef, ride.CustomerID, ride.PickupLocationID, ride.DropLocationID,
		ride.PassengerMobile, ride.Status, ride.BookedAt, ride.IdempotencyKey,
		ride.Version, ride.CreatedAt, ride.UpdatedAt).Scan(&ride.ID)
}

func (r *rideRepository) GetByID(ctx context.Context, id int64) (*models.Ride, error) {
	var ride models.Ride
	query := `SELECT * FROM rides WHERE id = $1`
	err := r.db.GetContext(ctx, &ride, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

func (r *rideRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Ride, error) {
	var ride models.Ride
	query := `SELECT * FROM rides WHERE idempotency_key = $1`
	err := r.db.GetContext(ctx, &ride, query, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

func (r *rideRepository) List(ctx context.Context) ([]*models.Ride, error) {
	var rides []*models.Ride
	query := `SELECT * FROM rides ORDER BY id`
	err := r.db.SelectContext(ctx, &rides, query)
	return rides, err
}

// UpdateStatus applies a version-stamped status update. Zero rows
// affected means another request won the write; the caller receives
// ErrConflict and must re-read.
func (r *rideRepository) UpdateStatus(ctx context.Context, ride *models.Ride) error {
	query := `
		UPDATE rides
		SET status = $1, cab_id = $2, picked_at = $3, dropped_at = $4,
			version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7
	`
	res, err := r.db.ExecContext(ctx, query,
		ride.Status, ride.CabID, ride.PickedAt, ride.DroppedAt,
		time.Now(), ride.ID, ride.Version)
	if err != nil {
		return err
	}
	return r.requireRow(res)
}

func (r *rideRepository) Cancel(ctx context.Context, ride *models.Ride) error {
	query := `
		UPDATE rides
		SET status = $1, cancelled_by = $2, cancellation_reason = $3,
			version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		lifecycle.StatusCancelled, ride.CancelledBy, ride.CancellationReason,
		time.Now(), ride.ID, ride.Version)
	if err != nil {
		return err
	}
	return r.requireRow(res)
}

func (r *rideRepository) AttachFeedback(ctx context.Context, ride *models.Ride) error {
	query := `
		UPDATE rides
		SET feedback = $1, rating = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5
	`
	res, err := r.db.ExecContext(ctx, query,
		ride.Feedback, ride.Rating, time.Now(), ride.ID, ride.Version)
	if err != nil {
		return err
	}
	return r.requireRow(res)
}

func (r *rideRepository) GetActiveRideByCustomerID(ctx context.Context, customerID int64) (*models.Ride, error) {
	var ride models.Ride
	query := `
		SELECT * FROM rides
		WHERE customer_id = $1 AND status NOT IN ($2, $3)
		ORDER BY booked_at DESC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &ride, query, customerID, lifecycle.StatusCompleted, lifecycle.StatusCancelled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

func (r *rideRepository) GetActiveRideByCabID(ctx context.Context, cabID int64) (*models.Ride, error) {
	var ride models.Ride
	query := `
		SELECT * FROM rides
		WHERE cab_id = $1 AND status NOT IN ($2, $3)
		ORDER BY booked_at DESC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &ride, query, cabID, lifecycle.StatusCompleted, lifecycle.StatusCancelled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

// GetByIDForUpdate gets a ride with a row lock, for the confirm path
// where the ride and its cab change together.
func (r *rideRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*models.Ride, error) {
	var ride models.Ride
	query := `SELECT * FROM rides WHERE id = $1 FOR UPDATE`
	err := tx.GetContext(ctx, &ride, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

func (r *rideRepository) requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrConflict
	}
	return nil
}
