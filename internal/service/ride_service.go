package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/hellocabs/hellocabs/internal/cache"
	apperrors "github.com/hellocabs/hellocabs/internal/errors"
	"github.com/hellocabs/hellocabs/internal/events"
	"github.com/hellocabs/hellocabs/internal/lifecycle"
	"github.com/hellocabs/hellocabs/internal/models"
	"github.com/hellocabs/hellocabs/internal/observability"
	"github.com/hellocabs/hellocabs/internal/repository"
	"github.com/jmoiron/sqlx"
)

// User-facing outcome messages surfaced with the updated ride.
const (
	MsgCabAssigned    = "Cab Assigned"
	MsgRideCancelled  = "Ride cancelled successfully"
	MsgFeedbackThanks = "Thanks for giving valuable feedback"
	MsgRideFound      = "Ride found"
)

type RideService interface {
	BookRide(ctx context.Context, req *models.BookRideRequest, idempotencyKey string) (*models.Ride, error)
	GetRide(ctx context.Context, id int64) (*models.RideResponse, error)
	ListRides(ctx context.Context) ([]*models.RideResponse, error)
	UpdateRideStatus(ctx context.Context, id int64, req *models.UpdateRideStatusRequest) (*models.Ride, error)
	ConfirmRide(ctx context.Context, rideID, cabID int64) (*models.Ride, error)
	CancelRide(ctx context.Context, id int64, req *models.CancelRideRequest) (*models.Ride, error)
	SubmitFeedback(ctx context.Context, id int64, req *models.FeedbackRequest) (*models.Ride, error)
}

type rideService struct {
	db           *sqlx.DB
	rideRepo     repository.RideRepository
	cabRepo      repository.CabRepository
	locationRepo repository.LocationRepository
	cabCache     cache.CabAvailabilityCache
	publisher    events.Publisher
}

func NewRideService(
	db *sqlx.DB,
	rideRepo repository.RideRepository,
	cabRepo repository.CabRepository,
	locationRepo repository.LocationRepository,
	cabCache cache.CabAvailabilityCache,
	publisher events.Publisher,
) RideService {
	return &rideService{
		db:           db,
		rideRepo:     rideRepo,
		cabRepo:      cabRepo,
		locationRepo: locationRepo,
		cabCache:     cabCache,
		publisher:    publisher,
	}
}

func (s *rideService) BookRide(ctx context.Context, req *models.BookRideRequest, idempotencyKey string) (*models.Ride, error) {
	// Check idempotency
	if idempotencyKey != "" {
		existingRide, err := s.rideRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existingRide != nil {
			return existingRide, nil
		}
	}

	if req.PickupLocationID == req.DropLocationID {
		return nil, apperrors.BadRequest("pickup and drop locations must differ")
	}

	pickup, err := s.locationRepo.GetByID(ctx, req.PickupLocationID)
	if err != nil {
		return nil, err
	}
	if pickup == nil {
		return nil, apperrors.NotFound("pickup location")
	}
	drop, err := s.locationRepo.GetByID(ctx, req.DropLocationID)
	if err != nil {
		return nil, err
	}
	if drop == nil {
		return nil, apperrors.NotFound("drop location")
	}

	// One active ride per customer
	activeRide, err := s.rideRepo.GetActiveRideByCustomerID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if activeRide != nil {
		return nil, apperrors.CustomerHasActiveRide()
	}

	ride := &models.Ride{
		CustomerID:       req.CustomerID,
		PickupLocationID: req.PickupLocationID,
		DropLocationID:   req.DropLocationID,
		PassengerMobile:  req.PassengerMobile,
	}
	if idempotencyKey != "" {
		ride.IdempotencyKey = &idempotencyKey
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	if s.cabCache != nil {
		if err := s.cabCache.SetCustomerActiveRide(ctx, ride.CustomerID, ride.ID); err != nil {
			log.Printf("failed to cache active ride for customer %d: %v", ride.CustomerID, err)
		}
	}

	observability.RidesBookedTotal.Inc()
	s.publish(ctx, ride)

	return ride, nil
}

func (s *rideService) GetRide(ctx context.Context, id int64) (*models.RideResponse, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}

	return s.toResponse(ctx, ride), nil
}

func (s *rideService) ListRides(ctx context.Context) ([]*models.RideResponse, error) {
	rides, err := s.rideRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.RideResponse, 0, len(rides))
	for _, ride := range rides {
		responses = append(responses, s.toResponse(ctx, ride))
	}
	return responses, nil
}

func (s *rideService) UpdateRideStatus(ctx context.Context, id int64, req *models.UpdateRideStatusRequest) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}

	to := lifecycle.Status(req.Status)
	changed, err := lifecycle.Transition(ride.Status, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Re-applying the current status is a no-op success.
		return ride, nil
	}

	at := time.Now()
	if req.Timestamp != nil {
		at = *req.Timestamp
	}

	switch to {
	case lifecycle.StatusAccepted:
		return nil, apperrors.BadRequest("a ride is accepted by confirming a cab, not by a plain status update")
	case lifecycle.StatusCancelled:
		return nil, apperrors.BadRequest("cancel the ride with a reason instead of a plain status update")
	case lifecycle.StatusPicked:
		if err := lifecycle.ValidatePickupTime(ride.BookedAt, at); err != nil {
			return nil, err
		}
		ride.PickedAt = &at
	case lifecycle.StatusCompleted:
		if ride.PickedAt != nil {
			if err := lifecycle.ValidateDropTime(*ride.PickedAt, at); err != nil {
				return nil, err
			}
		}
		ride.DroppedAt = &at
	}

	from := ride.Status
	ride.Status = to
	if err := s.rideRepo.UpdateStatus(ctx, ride); err != nil {
		return nil, mapConflict(err, "ride")
	}

	if to == lifecycle.StatusCompleted {
		s.releaseCab(ctx, ride)
		s.clearCustomerRide(ctx, ride.CustomerID)
	}

	observability.RideTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	s.publish(ctx, ride)

	return ride, nil
}

// ConfirmRide pairs an Available cab with a waiting ride. The ride row
// and the cab row are locked and updated in one transaction so no
// observer ever sees an Accepted ride with an unassigned cab.
func (s *rideService) ConfirmRide(ctx context.Context, rideID, cabID int64) (*models.Ride, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ride, err := s.rideRepo.GetByIDForUpdate(ctx, tx, rideID)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}
	from := ride.Status

	if err := lifecycle.ValidateAssign(ride.Status); err != nil {
		return nil, err
	}

	cab, err := s.cabRepo.GetByIDForUpdate(ctx, tx, cabID)
	if err != nil {
		return nil, err
	}
	if cab == nil {
		return nil, apperrors.NotFound("cab")
	}
	if !lifecycle.CanAssignCab(cab.Status) {
		return nil, apperrors.CabUnavailable(cabID)
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		"UPDATE rides SET status = $1, cab_id = $2, version = version + 1, updated_at = $3 WHERE id = $4",
		lifecycle.StatusAccepted, cabID, now, rideID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE cabs SET status = $1, updated_at = $2 WHERE id = $3",
		lifecycle.CabAssigned, now, cabID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	ride.Status = lifecycle.StatusAccepted
	ride.CabID = &cabID
	ride.Version++

	if s.cabCache != nil {
		if err := s.cabCache.SetActiveRide(ctx, cabID, rideID); err != nil {
			log.Printf("failed to cache active ride for cab %d: %v", cabID, err)
		}
		if err := s.cabCache.SetCabMeta(ctx, cabID, lifecycle.CabAssigned, cab.CarModel, cab.DriverRating); err != nil {
			log.Printf("failed to update cab meta in cache: %v", err)
		}
	}

	observability.CabsAssignedTotal.Inc()
	observability.RideTransitionsTotal.WithLabelValues(string(from), string(lifecycle.StatusAccepted)).Inc()
	s.publish(ctx, ride)

	return ride, nil
}

func (s *rideService) CancelRide(ctx context.Context, id int64, req *models.CancelRideRequest) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}

	if err := lifecycle.ValidateCancel(ride.Status, req.Reason); err != nil {
		return nil, err
	}

	cancelledBy := req.CancelledBy
	if cancelledBy == "" {
		cancelledBy = "passenger"
	}
	ride.CancelledBy = &cancelledBy
	ride.CancellationReason = &req.Reason

	if err := s.rideRepo.Cancel(ctx, ride); err != nil {
		return nil, mapConflict(err, "ride")
	}

	from := ride.Status
	ride.Status = lifecycle.StatusCancelled

	s.releaseCab(ctx, ride)
	s.clearCustomerRide(ctx, ride.CustomerID)

	observability.RidesCancelledTotal.Inc()
	observability.RideTransitionsTotal.WithLabelValues(string(from), string(lifecycle.StatusCancelled)).Inc()
	s.publish(ctx, ride)

	return ride, nil
}

func (s *rideService) SubmitFeedback(ctx context.Context, id int64, req *models.FeedbackRequest) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}

	if err := lifecycle.ValidateFeedback(ride.Status, req.Rating); err != nil {
		return nil, err
	}

	ride.Feedback = &req.Feedback
	ride.Rating = &req.Rating

	if err := s.rideRepo.AttachFeedback(ctx, ride); err != nil {
		return nil, mapConflict(err, "ride")
	}

	return ride, nil
}

// releaseCab frees a cab after its ride ends. Cache updates here are
// best-effort; the database write is the one that matters.
func (s *rideService) releaseCab(ctx context.Context, ride *models.Ride) {
	if ride.CabID == nil {
		return
	}
	cabID := *ride.CabID

	if err := s.cabRepo.UpdateStatus(ctx, cabID, lifecycle.CabAvailable); err != nil {
		log.Printf("failed to release cab %d: %v", cabID, err)
		return
	}
	if ride.Status == lifecycle.StatusCompleted {
		if err := s.cabRepo.IncrementTotalRides(ctx, cabID); err != nil {
			log.Printf("failed to increment total rides for cab %d: %v", cabID, err)
		}
	}

	if s.cabCache != nil {
		if err := s.cabCache.ClearActiveRide(ctx, cabID); err != nil {
			log.Printf("failed to clear active ride for cab %d: %v", cabID, err)
		}
		cab, err := s.cabRepo.GetByID(ctx, cabID)
		if err == nil && cab != nil {
			if err := s.cabCache.SetCabMeta(ctx, cabID, lifecycle.CabAvailable, cab.CarModel, cab.DriverRating); err != nil {
				log.Printf("failed to update cab meta in cache: %v", err)
			}
		}
	}
}

func (s *rideService) clearCustomerRide(ctx context.Context, customerID int64) {
	if s.cabCache == nil {
		return
	}
	if err := s.cabCache.ClearCustomerActiveRide(ctx, customerID); err != nil {
		log.Printf("failed to clear active ride for customer %d: %v", customerID, err)
	}
}

func (s *rideService) publish(ctx context.Context, ride *models.Ride) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStatusChange(ctx, ride); err != nil {
		log.Printf("failed to publish ride event for ride %d: %v", ride.ID, err)
	}
}

func (s *rideService) toResponse(ctx context.Context, ride *models.Ride) *models.RideResponse {
	response := ride.ToResponse()

	if pickup, err := s.locationRepo.GetByID(ctx, ride.PickupLocationID); err == nil && pickup != nil {
		response.Pickup = pickup.ToResponse()
	}
	if drop, err := s.locationRepo.GetByID(ctx, ride.DropLocationID); err == nil && drop != nil {
		response.Drop = drop.ToResponse()
	}
	if ride.CabID != nil {
		if cab, err := s.cabRepo.GetByID(ctx, *ride.CabID); err == nil && cab != nil {
			response.Cab = cab.ToResponse()
		}
	}

	return response
}

func mapConflict(err error, resource string) error {
	if errors.Is(err, apperrors.ErrConflict) {
		return apperrors.ConcurrentUpdate(resource)
	}
	return err
}
