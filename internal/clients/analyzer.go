package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/morgabi/homehunt/internal/models"
)

// Analyzer extracts listing fields from an image and produces short
// advice/joke texts about an apartment. Advice and joke are independent
// calls: a failure in one must not block the other.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, imageURL string) (*models.ApartmentPatch, error)
	Advice(ctx context.Context, apt *models.Apartment) (string, error)
	Joke(ctx context.Context, apt *models.Apartment) (string, error)
}

// openaiAnalyzer implements Analyzer over the OpenAI chat API.
type openaiAnalyzer struct {
	client *openai.Client
	model  string
}

// NewAnalyzer creates an Analyzer using the given API key and model.
func NewAnalyzer(apiKey, model string) Analyzer {
	return &openaiAnalyzer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const analyzeSystemPrompt = `You extract apartment listing details from screenshots of rental ads.
Respond with a single JSON object using only these keys, omitting any you cannot read:
title, description, location, contact_name, contact_phone,
price (number), arnona (number), square_meters (number), floor (number),
pets_allowed ("yes"/"no"/"unknown"), entry_date (ISO date YYYY-MM-DD or the ad's own wording).`

// analysisPayload is the loose shape the model returns. Every field is
// optional; the consumer tolerates anything missing.
type analysisPayload struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Location     *string  `json:"location"`
	ContactName  *string  `json:"contact_name"`
	ContactPhone *string  `json:"contact_phone"`
	Price        *float64 `json:"price"`
	Arnona       *float64 `json:"arnona"`
	SquareMeters *float64 `json:"square_meters"`
	Floor        *int     `json:"floor"`
	PetsAllowed  *string  `json:"pets_allowed"`
	EntryDate    *string  `json:"entry_date"`
}

func (a *openaiAnalyzer) AnalyzeImage(ctx context.Context, imageURL string) (*models.ApartmentPatch, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: analyzeSystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Extract the listing details from this ad.",
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: 500,
	})
	if err != nil {
		return nil, fmt.Errorf("image analysis request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("image analysis returned no choices")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("image analysis returned malformed JSON: %w", err)
	}

	return payloadToPatch(&payload), nil
}

// payloadToPatch maps the loose model output onto a typed patch.
func payloadToPatch(p *analysisPayload) *models.ApartmentPatch {
	patch := &models.ApartmentPatch{
		Title:        p.Title,
		Description:  p.Description,
		Location:     p.Location,
		ContactName:  p.ContactName,
		ContactPhone: p.ContactPhone,
		Price:        p.Price,
		Arnona:       p.Arnona,
		SquareMeters: p.SquareMeters,
		Floor:        p.Floor,
	}

	if p.PetsAllowed != nil {
		pets := models.PetsAllowed(strings.ToLower(strings.TrimSpace(*p.PetsAllowed)))
		if pets.Valid() {
			patch.PetsAllowed = &pets
		}
	}

	if p.EntryDate != nil {
		if d := CleanEntryDate(*p.EntryDate); d != nil {
			patch.EntryDate = d
		}
	}

	return patch
}

// CleanEntryDate parses an extracted entry date. Relative-time phrases
// like "immediately" or "מיידי" are discarded rather than stored as
// non-ISO text: anything that is not a plain calendar date becomes nil.
func CleanEntryDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", "2.1.2006"} {
		if d, err := time.Parse(layout, raw); err == nil {
			return &d
		}
	}
	return nil
}

func (a *openaiAnalyzer) Advice(ctx context.Context, apt *models.Apartment) (string, error) {
	prompt := fmt.Sprintf(
		"Give short practical advice (3-4 sentences) about viewing and negotiating this rental apartment: %s",
		apartmentSnapshot(apt),
	)
	return a.complete(ctx, prompt)
}

func (a *openaiAnalyzer) Joke(ctx context.Context, apt *models.Apartment) (string, error) {
	prompt := fmt.Sprintf(
		"Tell one short lighthearted joke about this rental apartment: %s",
		apartmentSnapshot(apt),
	)
	return a.complete(ctx, prompt)
}

func (a *openaiAnalyzer) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 300,
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// apartmentSnapshot renders the fields worth telling the model about.
func apartmentSnapshot(apt *models.Apartment) string {
	var sb strings.Builder
	sb.WriteString("title: " + apt.Title)
	if apt.Location != nil {
		sb.WriteString(", location: " + *apt.Location)
	}
	if apt.Price != nil {
		fmt.Fprintf(&sb, ", price: %.0f ILS/month", *apt.Price)
	}
	if apt.Arnona != nil {
		fmt.Fprintf(&sb, ", arnona: %.0f", *apt.Arnona)
	}
	if apt.SquareMeters != nil {
		fmt.Fprintf(&sb, ", size: %.0f sqm", *apt.SquareMeters)
	}
	if apt.Floor != nil {
		fmt.Fprintf(&sb, ", floor: %d", *apt.Floor)
	}
	if apt.Description != nil {
		sb.WriteString(", description: " + *apt.Description)
	}
	return sb.String()
}
