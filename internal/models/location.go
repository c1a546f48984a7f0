package models

import "time"

// Location is immutable pickup/drop reference data once created.
type Location struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateLocationRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type LocationResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (l *Location) ToResponse() *LocationResponse {
	return &LocationResponse{ID: l.ID, Name: l.Name}
}
