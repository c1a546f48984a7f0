package models

import (
	"time"

	"github.com/hellocabs/hellocabs/internal/lifecycle"
)

type Cab struct {
	ID            int64               `db:"id" json:"id"`
	CabNumber     string              `db:"cab_number" json:"cab_number"`
	DriverName    string              `db:"driver_name" json:"driver_name"`
	MobileNumber  string              `db:"mobile_number" json:"mobile_number"`
	DriverRating  float64             `db:"driver_rating" json:"driver_rating"`
	LicenseNumber string              `db:"license_number" json:"license_number"`
	CarModel      string              `db:"car_model" json:"car_model"`
	Status        lifecycle.CabStatus `db:"status" json:"status"`
	TotalRides    int                 `db:"total_rides" json:"total_rides"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
}

type RegisterCabRequest struct {
	CabNumber     string  `json:"cab_number" validate:"required"`
	DriverName    string  `json:"driver_name" validate:"required,min=2,max=100"`
	MobileNumber  string  `json:"mobile_number" validate:"required,len=10,numeric"`
	LicenseNumber string  `json:"license_number" validate:"required"`
	CarModel      string  `json:"car_model" validate:"required"`
	DriverRating  float64 `json:"driver_rating,omitempty" validate:"omitempty,gte=0,lte=5"`
}

type UpdateCabRequest struct {
	DriverName   string  `json:"driver_name,omitempty" validate:"omitempty,min=2,max=100"`
	MobileNumber string  `json:"mobile_number,omitempty" validate:"omitempty,len=10,numeric"`
	CarModel     string  `json:"car_model,omitempty"`
	DriverRating float64 `json:"driver_rating,omitempty" validate:"omitempty,gte=0,lte=5"`
}

type UpdateCabStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Available Assigned Unavailable"`
}

type CabResponse struct {
	ID           int64               `json:"id"`
	CabNumber    string              `json:"cab_number"`
	DriverName   string              `json:"driver_name"`
	MobileNumber string              `json:"mobile_number"`
	DriverRating float64             `json:"driver_rating"`
	CarModel     string              `json:"car_model"`
	Status       lifecycle.CabStatus `json:"status"`
}

func (c *Cab) ToResponse() *CabResponse {
	return &CabResponse{
		ID:           c.ID,
		CabNumber:    c.CabNumber,
		DriverName:   c.DriverName,
		MobileNumber: c.MobileNumber,
		DriverRating: c.DriverRating,
		CarModel:     c.CarModel,
		Status:       c.Status,
	}
}
