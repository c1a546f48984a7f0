package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hellocabs/hellocabs/internal/lifecycle"
	"github.com/hellocabs/hellocabs/internal/models"
	"github.com/jmoiron/sqlx"
)

type CabRepository interface {
	Create(ctx context.Context, cab *models.Cab) error
	GetByID(ctx context.Context, id int64) (*models.Cab, error)
	GetByNumber(ctx context.Context, cabNumber string) (*models.Cab, error)
	List(ctx context.Context) ([]*models.Cab, error)
	Update(ctx context.Context, cab *models.Cab) error
	UpdateStatus(ctx context.Context, id int64, status lifecycle.CabStatus) error
	IncrementTotalRides(ctx context.Context, id int64) error
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*models.Cab, error)
	Delete(ctx context.Context, id int64) error
}

type cabRepository struct {
	db *sqlx.DB
}

func NewCabRepository(db *sqlx.DB) CabRepository {
	return &cabRepository{db: db}
}

func (r *cabRepository) Create(ctx context.Context, cab *models.Cab) error {
	now := time.Now()
	cab.CreatedAt = now
	cab.UpdatedAt = now
	cab.Status = lifecycle.CabAvailable
	if cab.DriverRating == 0 {
		cab.DriverRating = 5.0
	}
	cab.TotalRides = 0

	query := `
		INSERT INTO cabs (cab_number, driver_name, mobile_number, driver_rating,
			license_number, car_model, status, total_rides, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		cab.CabNumber, cab.DriverName, cab.MobileNumber, cab.DriverRating,
		cab.LicenseNumber, cab.CarModel, cab.Status, cab.TotalRides,
		cab.CreatedAt, cab.UpdatedAt).Scan(&cab.ID)
}

func (r *cabRepository) GetByID(ctx context.Context, id int64) (*models.Cab, error) {
	var cab models.Cab
	query := `SELECT * FROM cabs WHERE id = $1`
	err := r.db.GetContext(ctx, &cab, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &cab, err
}

func (r *cabRepository) GetByNumber(ctx context.Context, cabNumber string) (*models.Cab, error) {
	var cab models.Cab
	query := `SELECT * FROM cabs WHERE cab_number = $1`
	err := r.db.GetContext(ctx, &cab, query, cabNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &cab, err
}

func (r *cabRepository) List(ctx context.Context) ([]*models.Cab, error) {
	var cabs []*models.Cab
	query := `SELECT * FROM cabs ORDER BY id`
	err := r.db.SelectContext(ctx, &cabs, query)
	return cabs, err
}

func (r *cabRepository) Update(ctx context.Context, cab *models.Cab) error {
	cab.UpdatedAt = time.Now()
	query := `
		UPDATE cabs
		SET driver_name = $1, mobile_number = $2, car_model = $3, driver_rating = $4, updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		cab.DriverName, cab.MobileNumber, cab.CarModel, cab.DriverRating,
		cab.UpdatedAt, cab.ID)
	return err
}

func (r *cabRepository) UpdateStatus(ctx context.Context, id int64, status lifecycle.CabStatus) error {
	query := `UPDATE cabs SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func (r *cabRepository) IncrementTotalRides(ctx context.Context, id int64) error {
	query := `UPDATE cabs SET total_rides = total_rides + 1, updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

// GetByIDForUpdate gets a cab with a row lock, paired with the ride lock
// during confirmation.
func (r *cabRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*models.Cab, error) {
	var cab models.Cab
	query := `SELECT * FROM cabs WHERE id = $1 FOR UPDATE`
	err := tx.GetContext(ctx, &cab, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &cab, err
}

func (r *cabRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM cabs WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
