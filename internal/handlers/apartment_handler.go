package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/morgabi/homehunt/internal/errors"
	"github.com/morgabi/homehunt/internal/middleware"
	"github.com/morgabi/homehunt/internal/models"
	"github.com/morgabi/homehunt/internal/services"
)

// ApartmentHandler handles apartment-related HTTP requests.
type ApartmentHandler struct {
	service services.ApartmentService
}

// NewApartmentHandler creates a new ApartmentHandler instance.
func NewApartmentHandler(service services.ApartmentService) *ApartmentHandler {
	return &ApartmentHandler{
		service: service,
	}
}

// CreateApartmentRequest is the body for POST /api/v1/apartments.
// Optional fields stay pointers so "absent" and "zero" are distinguishable.
type CreateApartmentRequest struct {
	Title              string     `json:"title" binding:"required"`
	Description        *string    `json:"description"`
	Location           *string    `json:"location"`
	ContactName        *string    `json:"contactName"`
	ContactPhone       *string    `json:"contactPhone"`
	ApartmentLink      *string    `json:"apartmentLink"`
	FbURL              *string    `json:"fbUrl"`
	Price              *float64   `json:"price"`
	Arnona             *float64   `json:"arnona"`
	SquareMeters       *float64   `json:"squareMeters"`
	Floor              *int       `json:"floor"`
	ImageURL           string     `json:"imageUrl"`
	Status             string     `json:"status"`
	PetsAllowed        string     `json:"petsAllowed"`
	HasShelter         *bool      `json:"hasShelter"`
	EntryDate          *time.Time `json:"entryDate"`
	MorRating          int        `json:"morRating"`
	GabiRating         int        `json:"gabiRating"`
	Note               *string    `json:"note"`
	ScheduledVisitText *string    `json:"scheduledVisitText"`
	CoupleID           *string    `json:"coupleId"`
}

// RatingRequest is the body for the per-partner rating endpoint.
type RatingRequest struct {
	Partner string `json:"partner" binding:"required,oneof=mor gabi"`
	Rating  *int   `json:"rating" binding:"required"`
}

// TalkedRequest is the body for the per-partner talked-flag endpoint.
type TalkedRequest struct {
	Partner string `json:"partner" binding:"required,oneof=mor gabi"`
	Talked  *bool  `json:"talked" binding:"required"`
}

// ApartmentListResponse wraps every mutation response: the canonical,
// re-fetched list the client should render next.
type ApartmentListResponse struct {
	Apartments []models.Apartment `json:"apartments"`
	Count      int                `json:"count"`
}

// ApartmentResponse wraps a single apartment.
type ApartmentResponse struct {
	Apartment *models.Apartment `json:"apartment"`
}

// CreateResponse carries the stored record plus the refreshed list.
type CreateResponse struct {
	Apartment  *models.Apartment  `json:"apartment"`
	Apartments []models.Apartment `json:"apartments"`
}

// List handles GET /api/v1/apartments.
// Returns all apartments ordered by combined rating descending.
func (h *ApartmentHandler) List(c *gin.Context) {
	apartments, err := h.service.List(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load apartments", err)
		return
	}

	c.JSON(http.StatusOK, ApartmentListResponse{
		Apartments: apartments,
		Count:      len(apartments),
	})
}

// Get handles GET /api/v1/apartments/:id.
func (h *ApartmentHandler) Get(c *gin.Context) {
	apartment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrApartmentNotFound) {
			apierrors.NotFound(c, "Apartment not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load apartment", err)
		return
	}

	c.JSON(http.StatusOK, ApartmentResponse{Apartment: apartment})
}

// Create handles POST /api/v1/apartments.
// Validation failures reach the client before anything is stored; the
// "added" notification is spawned by the service and never blocks here.
func (h *ApartmentHandler) Create(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req CreateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	apt := req.toModel()
	apt.ApplyDefaults()

	if log != nil {
		log.Info("Creating apartment", map[string]interface{}{
			"title": apt.Title,
		})
	}

	created, apartments, err := h.service.Create(c.Request.Context(), apt)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to create apartment", err)
		return
	}

	c.JSON(http.StatusCreated, CreateResponse{
		Apartment:  created,
		Apartments: apartments,
	})
}

// Update handles PATCH /api/v1/apartments/:id.
func (h *ApartmentHandler) Update(c *gin.Context) {
	var patch models.ApartmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	apartments, err := h.service.Update(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		h.respondUpdateError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApartmentListResponse{
		Apartments: apartments,
		Count:      len(apartments),
	})
}

// Delete handles DELETE /api/v1/apartments/:id.
// The apartment moves to the recycle bin; the refreshed list comes back.
func (h *ApartmentHandler) Delete(c *gin.Context) {
	apartments, err := h.service.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrApartmentNotFound) {
			apierrors.NotFound(c, "Apartment not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to delete apartment", err)
		return
	}

	c.JSON(http.StatusOK, ApartmentListResponse{
		Apartments: apartments,
		Count:      len(apartments),
	})
}

// SetRating handles PATCH /api/v1/apartments/:id/rating.
// One partner's score changes; the other's is untouched.
func (h *ApartmentHandler) SetRating(c *gin.Context) {
	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	var (
		apartments []models.Apartment
		err        error
	)
	if req.Partner == "mor" {
		apartments, err = h.service.SetMorRating(c.Request.Context(), c.Param("id"), *req.Rating)
	} else {
		apartments, err = h.service.SetGabiRating(c.Request.Context(), c.Param("id"), *req.Rating)
	}
	if err != nil {
		h.respondUpdateError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApartmentListResponse{
		Apartments: apartments,
		Count:      len(apartments),
	})
}

// SetTalked handles PATCH /api/v1/apartments/:id/talked.
// Flips one partner's spoke-with flag without touching the status enum.
func (h *ApartmentHandler) SetTalked(c *gin.Context) {
	var req TalkedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	var (
		apartments []models.Apartment
		err        error
	)
	if req.Partner == "mor" {
		apartments, err = h.service.SetMorTalked(c.Request.Context(), c.Param("id"), *req.Talked)
	} else {
		apartments, err = h.service.SetGabiTalked(c.Request.Context(), c.Param("id"), *req.Talked)
	}
	if err != nil {
		h.respondUpdateError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApartmentListResponse{
		Apartments: apartments,
		Count:      len(apartments),
	})
}

// respondUpdateError maps service-level update errors to HTTP responses.
func (h *ApartmentHandler) respondUpdateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrApartmentNotFound):
		apierrors.NotFound(c, "Apartment not found")
	case errors.Is(err, services.ErrEmptyPatch):
		apierrors.BadRequest(c, "Update carries no fields", nil)
	case errors.Is(err, models.ErrValidation):
		apierrors.BadRequest(c, err.Error(), nil)
	default:
		apierrors.InternalServerError(c, "Failed to update apartment", err)
	}
}

// toModel maps the request DTO onto a fresh Apartment.
func (r *CreateApartmentRequest) toModel() *models.Apartment {
	return &models.Apartment{
		Title:              r.Title,
		Description:        r.Description,
		Location:           r.Location,
		ContactName:        r.ContactName,
		ContactPhone:       r.ContactPhone,
		ApartmentLink:      r.ApartmentLink,
		FbURL:              r.FbURL,
		Price:              r.Price,
		Arnona:             r.Arnona,
		SquareMeters:       r.SquareMeters,
		Floor:              r.Floor,
		ImageURL:           r.ImageURL,
		Status:             models.Status(r.Status),
		PetsAllowed:        models.PetsAllowed(r.PetsAllowed),
		HasShelter:         r.HasShelter,
		EntryDate:          r.EntryDate,
		MorRating:          r.MorRating,
		GabiRating:         r.GabiRating,
		Note:               r.Note,
		ScheduledVisitText: r.ScheduledVisitText,
		CoupleID:           r.CoupleID,
	}
}
