package server

import (
	"github.com/raysh454/clauseguard/internal/assessment"
	"github.com/raysh454/clauseguard/internal/model"
)

// AnalyzeRequest is the JSON form of an analysis request. Uploads use
// multipart fields with the same names plus "file".
type AnalyzeRequest struct {
	Name     string `json:"name" example:"lease.txt"`
	Text     string `json:"text" example:"1. The Tenant shall indemnify the Landlord against all claims..."`
	Language string `json:"language" example:"en" enums:"en,hi,both"`
	Explain  string `json:"explain" example:"all" enums:"all,none"`
}

// HealthResponse reports liveness and whether AI explanations are on.
type HealthResponse struct {
	Status       string `json:"status" example:"ok"`
	Version      string `json:"version" example:"0.1.0"`
	Explanations bool   `json:"explanations" example:"true"`
}

// AnalysisResponse is a completed assessment.
type AnalysisResponse = model.AssessmentResult

// ComparisonResponse is the outcome of comparing two contract versions.
type ComparisonResponse = assessment.Comparison

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"document is empty"`
}
