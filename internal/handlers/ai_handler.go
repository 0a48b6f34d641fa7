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
)

// AIHandler exposes the AI glue: listing extraction from screenshots and
// per-apartment advice/joke texts.
type AIHandler struct {
	analyzer   clients.Analyzer
	apartments services.ApartmentService
}

// NewAIHandler creates a new AIHandler instance.
func NewAIHandler(analyzer clients.Analyzer, apartments services.ApartmentService) *AIHandler {
	return &AIHandler{
		analyzer:   analyzer,
		apartments: apartments,
	}
}

// AnalyzeImageRequest is the body for POST /api/v1/ai/analyze-image.
type AnalyzeImageRequest struct {
	ImageURL string `json:"imageUrl" binding:"required,url"`
}

// AnalyzeImageResponse carries the fields the model extracted, shaped as
// a patch the client can apply to a draft apartment form.
type AnalyzeImageResponse struct {
	Fields *models.ApartmentPatch `json:"fields"`
}

// InsightsResponse carries advice and joke texts. The two calls are
// independent: each side is either text or its own error message, and
// one failing never blanks the other.
type InsightsResponse struct {
	Advice      string `json:"advice,omitempty"`
	AdviceError string `json:"adviceError,omitempty"`
	Joke        string `json:"joke,omitempty"`
	JokeError   string `json:"jokeError,omitempty"`
}

// AnalyzeImage handles POST /api/v1/ai/analyze-image.
// Sends the screenshot to the vision model and returns extracted listing
// fields. Relative entry-date phrases are discarded, not guessed at.
func (h *AIHandler) AnalyzeImage(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req AnalyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	patch, err := h.analyzer.AnalyzeImage(c.Request.Context(), req.ImageURL)
	if err != nil {
		apierrors.BadGateway(c, "Image analysis failed", err)
		return
	}

	if log != nil {
		log.Info("Image analyzed", map[string]interface{}{
			"image_url": req.ImageURL,
		})
	}

	c.JSON(http.StatusOK, AnalyzeImageResponse{Fields: patch})
}

// Insights handles GET /api/v1/apartments/:id/insights.
// Both texts are attempted; failures are reported per-field so the
// client can render whichever side succeeded.
func (h *AIHandler) Insights(c *gin.Context) {
	apartment, err := h.apartments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrApartmentNotFound) {
			apierrors.NotFound(c, "Apartment not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load apartment", err)
		return
	}

	log := middleware.GetLogger(c)
	var resp InsightsResponse

	if advice, err := h.analyzer.Advice(c.Request.Context(), apartment); err != nil {
		if log != nil {
			log.Warn("Advice generation failed", map[string]interface{}{
				"apartment_id": apartment.ID,
				"error":        err.Error(),
			})
		}
		resp.AdviceError = "Advice is unavailable right now"
	} else {
		resp.Advice = advice
	}

	if joke, err := h.analyzer.Joke(c.Request.Context(), apartment); err != nil {
		if log != nil {
			log.Warn("Joke generation failed", map[string]interface{}{
				"apartment_id": apartment.ID,
				"error":        err.Error(),
			})
		}
		resp.JokeError = "Joke is unavailable right now"
	} else {
		resp.Joke = joke
	}

	c.JSON(http.StatusOK, resp)
}
