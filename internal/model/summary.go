package model

// SummarizeRequest is the body of POST /api/summarize. Code holds either
// source text or a raw-source link.
type SummarizeRequest struct {
	Code string `json:"code" validate:"required"`
}

// SummarizeResponse carries generated markdown.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}
