package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/hellocabs/hellocabs/internal/errors"
	"github.com/hellocabs/hellocabs/internal/middleware"
	"github.com/hellocabs/hellocabs/internal/models"
	"github.com/hellocabs/hellocabs/internal/service"
	"github.com/hellocabs/hellocabs/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type RideHandler struct {
	rideService service.RideService
	validate    *validator.Validate
}

func NewRideHandler(rideService service.RideService) *RideHandler {
	return &RideHandler{
		rideService: rideService,
		validate:    validator.New(),
	}
}

func (h *RideHandler) RegisterRoutes(r chi.Router) {
	r.Post("/rides", h.BookRide)
	r.Get("/rides", h.ListRides)
	r.Get("/rides/{id}", h.GetRide)
	r.Put("/rides/{id}/status", h.UpdateRideStatus)
	r.Put("/rides/{id}/confirm/{cabId}", h.ConfirmRide)
	r.Put("/rides/{id}/rating", h.SubmitFeedback)
	r.Delete("/rides/{id}", h.CancelRide)
}

// POST /v1/rides
func (h *RideHandler) BookRide(w http.ResponseWriter, r *http.Request) {
	var req models.BookRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	idempotencyKey := r.Header.Get(middleware.IdempotencyHeader)

	ride, err := h.rideService.BookRide(r.Context(), &req, idempotencyKey)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, ride.ToResponse())
}

// GET /v1/rides/{id}
func (h *RideHandler) GetRide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ride, err := h.rideService.GetRide(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Message(w, http.StatusOK, service.MsgRideFound, ride)
}

// GET /v1/rides
func (h *RideHandler) ListRides(w http.ResponseWriter, r *http.Request) {
	rides, err := h.rideService.ListRides(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, rides)
}

// PUT /v1/rides/{id}/status
func (h *RideHandler) UpdateRideStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateRideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	ride, err := h.rideService.UpdateRideStatus(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, ride.ToResponse())
}

// PUT /v1/rides/{id}/confirm/{cabId}
func (h *RideHandler) ConfirmRide(w http.ResponseWriter, r *http.Request) {
	rideID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cabID, ok := pathID(w, r, "cabId")
	if !ok {
		return
	}

	ride, err := h.rideService.ConfirmRide(r.Context(), rideID, cabID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Message(w, http.StatusOK, service.MsgCabAssigned, ride.ToResponse())
}

// PUT /v1/rides/{id}/rating
func (h *RideHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	ride, err := h.rideService.SubmitFeedback(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Message(w, http.StatusOK, service.MsgFeedbackThanks, ride.ToResponse())
}

// DELETE /v1/rides/{id}
func (h *RideHandler) CancelRide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.CancelRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	ride, err := h.rideService.CancelRide(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Message(w, http.StatusOK, service.MsgRideCancelled, ride.ToResponse())
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequest(w, param+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*apperrors.APIError); ok {
		utils.Error(w, apiErr)
		return
	}

	switch err {
	case apperrors.ErrNotFound:
		utils.NotFound(w, "resource")
	case apperrors.ErrConflict:
		utils.Error(w, apperrors.Conflict("resource conflict"))
	default:
		utils.InternalError(w, "internal server error")
	}
}
