package genai

// DTOs mirror the generative-language REST API (generateContent) wire format.

// GenerateContentRequest is the request body for :generateContent.
type GenerateContentRequest struct {
	Contents         []ContentDTO         `json:"contents"`
	GenerationConfig *GenerationConfigDTO `json:"generationConfig,omitempty"`
}

// ContentDTO is a single conversation turn.
type ContentDTO struct {
	Role  string    `json:"role,omitempty"`
	Parts []PartDTO `json:"parts"`
}

// PartDTO is one part of a turn: either text or inline binary data.
type PartDTO struct {
	Text       string         `json:"text,omitempty"`
	InlineData *InlineDataDTO `json:"inlineData,omitempty"`
}

// InlineDataDTO carries base64-encoded binary payloads (avatar images).
type InlineDataDTO struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// GenerationConfigDTO tunes the model output.
type GenerationConfigDTO struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

// GenerateContentResponse is the response body for :generateContent.
type GenerateContentResponse struct {
	Candidates []CandidateDTO `json:"candidates"`
	Error      *APIErrorDTO   `json:"error,omitempty"`
}

// CandidateDTO is one generated candidate.
type CandidateDTO struct {
	Content      ContentDTO `json:"content"`
	FinishReason string     `json:"finishReason,omitempty"`
}

// APIErrorDTO is the structured error envelope the API returns on failure.
type APIErrorDTO struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (e *APIErrorDTO) Error() string {
	return e.Message
}

// FirstText returns the first non-empty text part across candidates.
func (r *GenerateContentResponse) FirstText() (string, bool) {
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				return p.Text, true
			}
		}
	}
	return "", false
}

// FirstInlineData returns the first inline binary part across candidates.
func (r *GenerateContentResponse) FirstInlineData() (*InlineDataDTO, bool) {
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return p.InlineData, true
			}
		}
	}
	return nil, false
}
