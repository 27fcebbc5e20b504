package ai

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/ports"
)

// Wire types for the generateContent endpoint.

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
	MaxOutputTokens  int    `json:"maxOutputTokens,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content           content `json:"content"`
		FinishReason      string  `json:"finishReason"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// parseGenerateResponse extracts the generated text and any grounding
// citations. A block verdict becomes a GenerationError whose message the
// classifier recognizes as content_blocked.
func parseGenerateResponse(raw []byte) (ports.GenerateResponse, error) {
	parsed, err := decode(raw)
	if err != nil {
		return ports.GenerateResponse{}, err
	}

	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return ports.GenerateResponse{}, &domain.GenerationError{
			Message: fmt.Sprintf("prompt blocked by safety policies (%s)", parsed.PromptFeedback.BlockReason),
		}
	}
	if len(parsed.Candidates) == 0 {
		return ports.GenerateResponse{}, &domain.GenerationError{Message: "service returned no candidates"}
	}

	candidate := parsed.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return ports.GenerateResponse{}, &domain.GenerationError{
			Message: "response blocked by safety policies",
		}
	}

	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}

	resp := ports.GenerateResponse{Text: text.String()}
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web != nil && chunk.Web.URI != "" {
				resp.Citations = append(resp.Citations, domain.Citation{
					URI:   chunk.Web.URI,
					Title: chunk.Web.Title,
				})
			}
		}
	}
	return resp, nil
}

// parseImageResponse extracts the first inline image from a reply.
func parseImageResponse(raw []byte) (ports.ImageResult, error) {
	parsed, err := decode(raw)
	if err != nil {
		return ports.ImageResult{}, err
	}
	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return ports.ImageResult{}, &domain.GenerationError{
			Message: fmt.Sprintf("prompt blocked by safety policies (%s)", parsed.PromptFeedback.BlockReason),
		}
	}

	for _, candidate := range parsed.Candidates {
		for _, p := range candidate.Content.Parts {
			if p.InlineData == nil {
				continue
			}
			data, decodeErr := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if decodeErr != nil {
				return ports.ImageResult{}, fmt.Errorf("decode image payload: %w", decodeErr)
			}
			return ports.ImageResult{Data: data, MIMEType: p.InlineData.MIMEType}, nil
		}
	}
	return ports.ImageResult{}, &domain.GenerationError{Message: "service returned no image data"}
}

func decode(raw []byte) (generateContentResponse, error) {
	var parsed generateContentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return generateContentResponse{}, fmt.Errorf("unmarshal service reply: %w", err)
	}
	return parsed, nil
}
