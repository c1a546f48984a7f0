package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hellocabs/hellocabs/internal/models"
	"github.com/hellocabs/hellocabs/internal/service"
	"github.com/hellocabs/hellocabs/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type CabHandler struct {
	cabService service.CabService
	validate   *validator.Validate
}

func NewCabHandler(cabService service.CabService) *CabHandler {
	return &CabHandler{
		cabService: cabService,
		validate:   validator.New(),
	}
}

func (h *CabHandler) RegisterRoutes(r chi.Router) {
	r.Post("/cabs", h.RegisterCab)
	r.Get("/cabs", h.ListCabs)
	r.Get("/cabs/{id}", h.GetCab)
	r.Put("/cabs/{id}", h.UpdateCab)
	r.Put("/cabs/{id}/status", h.UpdateCabStatus)
	r.Delete("/cabs/{id}", h.DeregisterCab)
}

// POST /v1/cabs
func (h *CabHandler) RegisterCab(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterCabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	cab, err := h.cabService.RegisterCab(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, cab.ToResponse())
}

// GET /v1/cabs/{id}
func (h *CabHandler) GetCab(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	cab, err := h.cabService.GetCab(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, cab.ToResponse())
}

// GET /v1/cabs
func (h *CabHandler) ListCabs(w http.ResponseWriter, r *http.Request) {
	cabs, err := h.cabService.ListCabs(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	responses := make([]*models.CabResponse, 0, len(cabs))
	for _, cab := range cabs {
		responses = append(responses, cab.ToResponse())
	}

	utils.Success(w, http.StatusOK, responses)
}

// PUT /v1/cabs/{id}
func (h *CabHandler) UpdateCab(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateCabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	cab, err := h.cabService.UpdateCab(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, cab.ToResponse())
}

// PUT /v1/cabs/{id}/status
func (h *CabHandler) UpdateCabStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateCabStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	cab, err := h.cabService.UpdateCabStatus(r.Context(), id, req.Status)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, cab.ToResponse())
}

// DELETE /v1/cabs/{id}
func (h *CabHandler) DeregisterCab(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.cabService.DeregisterCab(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	utils.NoContent(w)
}
