package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hellocabs/hellocabs/internal/models"
	"github.com/hellocabs/hellocabs/internal/repository"
	"github.com/hellocabs/hellocabs/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// LocationHandler manages pickup/drop reference data. Locations are
// thin enough that the handler talks to the repository directly.
type LocationHandler struct {
	locationRepo repository.LocationRepository
	validate     *validator.Validate
}

func NewLocationHandler(locationRepo repository.LocationRepository) *LocationHandler {
	return &LocationHandler{
		locationRepo: locationRepo,
		validate:     validator.New(),
	}
}

func (h *LocationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/locations", h.CreateLocation)
	r.Get("/locations", h.ListLocations)
	r.Get("/locations/{id}", h.GetLocation)
	r.Delete("/locations/{id}", h.DeleteLocation)
}

// POST /v1/locations
func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	location := &models.Location{Name: req.Name}
	if err := h.locationRepo.Create(r.Context(), location); err != nil {
		utils.InternalError(w, "failed to create location")
		return
	}

	utils.Created(w, location.ToResponse())
}

// GET /v1/locations/{id}
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	location, err := h.locationRepo.GetByID(r.Context(), id)
	if err != nil {
		utils.InternalError(w, "failed to get location")
		return
	}
	if location == nil {
		utils.NotFound(w, "location")
		return
	}

	utils.Success(w, http.StatusOK, location.ToResponse())
}

// GET /v1/locations
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locationRepo.List(r.Context())
	if err != nil {
		utils.InternalError(w, "failed to list locations")
		return
	}

	responses := make([]*models.LocationResponse, 0, len(locations))
	for _, location := range locations {
		responses = append(responses, location.ToResponse())
	}

	utils.Success(w, http.StatusOK, responses)
}

// DELETE /v1/locations/{id}
func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	location, err := h.locationRepo.GetByID(r.Context(), id)
	if err != nil {
		utils.InternalError(w, "failed to get location")
		return
	}
	if location == nil {
		utils.NotFound(w, "location")
		return
	}

	if err := h.locationRepo.Delete(r.Context(), id); err != nil {
		utils.InternalError(w, "failed to delete location")
		return
	}

	utils.NoContent(w)
}
