package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hellocabs/hellocabs/internal/models"
	"github.com/jmoiron/sqlx"
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id int64) (*models.Location, error)
	List(ctx context.Context) ([]*models.Location, error)
	Delete(ctx context.Context, id int64) error
}

type locationRepository struct {
	db *sqlx.DB
}

func NewLocationRepository(db *sqlx.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	location.CreatedAt = time.Now()
	query := `INSERT INTO locations (name, created_at) VALUES ($1, $2) RETURNING id`
	return r.db.QueryRowContext(ctx, query, location.Name, location.CreatedAt).Scan(&location.ID)
}

func (r *locationRepository) GetByID(ctx context.Context, id int64) (*models.Location, error) {
	var location models.Location
	query := `SELECT * FROM locations WHERE id = $1`
	err := r.db.GetContext(ctx, &location, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &location, err
}

func (r *locationRepository) List(ctx context.Context) ([]*models.Location, error) {
	var locations []*models.Location
	query := `SELECT * FROM locations ORDER BY id`
	err := r.db.SelectContext(ctx, &locations, query)
	return locations, err
}

func (r *locationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM locations WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
