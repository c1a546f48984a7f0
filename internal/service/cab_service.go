package service

import (
	"context"
	"log"

	"github.com/hellocabs/hellocabs/internal/cache"
	apperrors "github.com/hellocabs/hellocabs/internal/errors"
	"github.com/hellocabs/hellocabs/internal/lifecycle"
	"github.com/hellocabs/hellocabs/internal/models"
	"github.com/hellocabs/hellocabs/internal/repository"
)

type CabService interface {
	RegisterCab(ctx context.Context, req *models.RegisterCabRequest) (*models.Cab, error)
	GetCab(ctx context.Context, id int64) (*models.Cab, error)
	ListCabs(ctx context.Context) ([]*models.Cab, error)
	UpdateCab(ctx context.Context, id int64, req *models.UpdateCabRequest) (*models.Cab, error)
	UpdateCabStatus(ctx context.Context, id int64, status string) (*models.Cab, error)
	DeregisterCab(ctx context.Context, id int64) error
}

type cabService struct {
	cabRepo  repository.CabRepository
	rideRepo repository.RideRepository
	cabCache cache.CabAvailabilityCache
}

func NewCabService(cabRepo repository.CabRepository, rideRepo repository.RideRepository, cabCache cache.CabAvailabilityCache) CabService {
	return &cabService{
		cabRepo:  cabRepo,
		rideRepo: rideRepo,
		cabCache: cabCache,
	}
}

func (s *cabService) RegisterCab(ctx context.Context, req *models.RegisterCabRequest) (*models.Cab, error) {
	existing, err := s.cabRepo.GetByNumber(ctx, req.CabNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("cab with this number already exists")
	}

	cab := &models.Cab{
		CabNumber:     req.CabNumber,
		DriverName:    req.DriverName,
		MobileNumber:  req.MobileNumber,
		LicenseNumber: req.LicenseNumber,
		CarModel:      req.CarModel,
		DriverRating:  req.DriverRating,
	}

	if err := s.cabRepo.Create(ctx, cab); err != nil {
		return nil, err
	}

	s.cacheMeta(ctx, cab)

	return cab, nil
}

func (s *cabService) GetCab(ctx context.Context, id int64) (*models.Cab, error) {
	cab, err := s.cabRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cab == nil {
		return nil, apperrors.NotFound("cab")
	}
	return cab, nil
}

func (s *cabService) ListCabs(ctx context.Context) ([]*models.Cab, error) {
	return s.cabRepo.List(ctx)
}

func (s *cabService) UpdateCab(ctx context.Context, id int64, req *models.UpdateCabRequest) (*models.Cab, error) {
	cab, err := s.cabRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cab == nil {
		return nil, apperrors.NotFound("cab")
	}

	if req.DriverName != "" {
		cab.DriverName = req.DriverName
	}
	if req.MobileNumber != "" {
		cab.MobileNumber = req.MobileNumber
	}
	if req.CarModel != "" {
		cab.CarModel = req.CarModel
	}
	if req.DriverRating != 0 {
		cab.DriverRating = req.DriverRating
	}

	if err := s.cabRepo.Update(ctx, cab); err != nil {
		return nil, err
	}

	s.cacheMeta(ctx, cab)

	return cab, nil
}

// UpdateCabStatus changes a cab's availability. A cab serving an active
// ride cannot be flipped back to Available by hand; the ride has to end
// first.
func (s *cabService) UpdateCabStatus(ctx context.Context, id int64, status string) (*models.Cab, error) {
	target := lifecycle.CabStatus(status)
	if !lifecycle.ValidCabStatus(target) {
		return nil, apperrors.BadRequest("cab status must be one of Available, Assigned, Unavailable")
	}

	cab, err := s.cabRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cab == nil {
		return nil, apperrors.NotFound("cab")
	}

	if cab.Status == target {
		return cab, nil
	}

	if cab.Status == lifecycle.CabAssigned {
		activeRide, err := s.rideRepo.GetActiveRideByCabID(ctx, id)
		if err != nil {
			return nil, err
		}
		if activeRide != nil {
			return nil, apperrors.CabOnActiveRide(id)
		}
	}

	if err := s.cabRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	cab.Status = target

	s.cacheMeta(ctx, cab)

	return cab, nil
}

func (s *cabService) DeregisterCab(ctx context.Context, id int64) error {
	cab, err := s.cabRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cab == nil {
		return apperrors.NotFound("cab")
	}

	activeRide, err := s.rideRepo.GetActiveRideByCabID(ctx, id)
	if err != nil {
		return err
	}
	if activeRide != nil {
		return apperrors.CabOnActiveRide(id)
	}

	if err := s.cabRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.cabCache != nil {
		if err := s.cabCache.RemoveCab(ctx, id, cab.CarModel); err != nil {
			log.Printf("failed to remove cab %d from cache: %v", id, err)
		}
	}

	return nil
}

func (s *cabService) cacheMeta(ctx context.Context, cab *models.Cab) {
	if s.cabCache == nil {
		return
	}
	if err := s.cabCache.SetCabMeta(ctx, cab.ID, cab.Status, cab.CarModel, cab.DriverRating); err != nil {
		log.Printf("failed to cache cab meta for cab %d: %v", cab.ID, err)
	}
}
