package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/morgabi/homehunt/internal/clients"
	apierrors "github.com/morgabi/homehunt/internal/errors"
	"github.com/morgabi/homehunt/internal/middleware"
	"github.com/morgabi/homehunt/internal/models"
	"github.com/morgabi/homehunt/internal/services"
	"github.com/morgabi/homehunt/internal/session"
)

// ScanHandler handles scan-import HTTP requests: triggering the external
// scraper and managing the scanned candidate pool.
type ScanHandler struct {
	service services.ScanService
	state   *session.State
}

// NewScanHandler creates a new ScanHandler instance.
func NewScanHandler(service services.ScanService, state *session.State) *ScanHandler {
	return &ScanHandler{
		service: service,
		state:   state,
	}
}

// ScanRequest is the body for POST /api/v1/scans. All filters optional;
// zero values mean "no constraint" and are forwarded as-is.
type ScanRequest struct {
	PropertyType string   `json:"propertyType"`
	MaxPrice     int      `json:"maxPrice" binding:"omitempty,min=0"`
	Areas        []string `json:"areas"`
	MinRooms     float64  `json:"minRooms" binding:"omitempty,min=0"`
	MaxRooms     float64  `json:"maxRooms" binding:"omitempty,min=0"`
}

// ScanResponse reports how many candidates the scrape produced.
type ScanResponse struct {
	Count int `json:"count"`
}

// ScannedListResponse wraps the current candidate pool.
type ScannedListResponse struct {
	Scanned []models.ScannedApartment `json:"scanned"`
	Count   int                       `json:"count"`
}

// ClearResponse reports how many candidates were removed.
type ClearResponse struct {
	Removed int64 `json:"removed"`
}

// ImportRequest is the body for POST /api/v1/scans/import: candidates
// produced out of band (an earlier export, a manual scrape run) to add
// to the pool directly.
type ImportRequest struct {
	Records []models.ScannedApartment `json:"records" binding:"required,min=1"`
}

// ImportResponse reports how many candidates were stored.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// Scan handles POST /api/v1/scans.
// Blocking and empty-result conditions get their own messages so the
// client can tell "site refused us" from "nothing matched".
func (h *ScanHandler) Scan(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid scan filters", nil)
		return
	}

	params := clients.ScanParams{
		PropertyType: req.PropertyType,
		MaxPrice:     req.MaxPrice,
		Areas:        req.Areas,
		MinRooms:     req.MinRooms,
		MaxRooms:     req.MaxRooms,
	}

	if log != nil {
		log.Info("Triggering scan", map[string]interface{}{
			"property_type": params.PropertyType,
			"max_price":     params.MaxPrice,
			"areas":         params.Areas,
		})
	}

	count, err := h.service.Scan(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrScraperBlocked):
			apierrors.BadGateway(c, "The listing site is blocking the scraper, try again later", err)
		case errors.Is(err, clients.ErrNoListings):
			apierrors.NotFound(c, "No listings found for these filters")
		default:
			apierrors.BadGateway(c, "Scan failed", err)
		}
		return
	}

	h.state.Increment("scans")
	c.JSON(http.StatusOK, ScanResponse{Count: count})
}

// Import handles POST /api/v1/scans/import.
// Stores candidates produced elsewhere. One invalid record rejects the
// whole batch; nothing is stored in that case.
func (h *ScanHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	imported, err := h.service.Import(c.Request.Context(), req.Records)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to import scanned apartments", err)
		return
	}

	h.state.Increment("scans")
	c.JSON(http.StatusCreated, ImportResponse{Imported: imported})
}

// ListScanned handles GET /api/v1/scans.
func (h *ScanHandler) ListScanned(c *gin.Context) {
	scanned, err := h.service.ListScanned(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load scanned apartments", err)
		return
	}

	c.JSON(http.StatusOK, ScannedListResponse{
		Scanned: scanned,
		Count:   len(scanned),
	})
}

// Promote handles POST /api/v1/scans/:id/promote.
// Copies the candidate into the canonical list and removes it from the
// pool. Returns the promoted apartment.
func (h *ScanHandler) Promote(c *gin.Context) {
	apartment, err := h.service.Promote(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrScannedNotFound) {
			apierrors.NotFound(c, "Scanned apartment not found")
			return
		}
		if errors.Is(err, models.ErrValidation) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		// Promotion is two sequential steps; apartment may be non-nil
		// here when the copy landed but the candidate delete failed. The
		// client still gets an error and the candidate stays visible.
		apierrors.InternalServerError(c, "Failed to promote scanned apartment", err)
		return
	}

	c.JSON(http.StatusCreated, ApartmentResponse{Apartment: apartment})
}

// Discard handles DELETE /api/v1/scans/:id.
func (h *ScanHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrScannedNotFound) {
			apierrors.NotFound(c, "Scanned apartment not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to discard scanned apartment", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearAll handles DELETE /api/v1/scans.
func (h *ScanHandler) ClearAll(c *gin.Context) {
	removed, err := h.service.ClearAll(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to clear scanned apartments", err)
		return
	}

	c.JSON(http.StatusOK, ClearResponse{Removed: removed})
}
