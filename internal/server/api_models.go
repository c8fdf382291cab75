package server

import "github.com/raysh454/promptlab/internal/catalog"

// ProblemResponse is the problem document returned by the API.
type ProblemResponse = catalog.Problem

// ErrorResponse is the uniform error payload, shaped like FastAPI's
// HTTPException body so existing clients keep working.
type ErrorResponse struct {
	Detail string `json:"detail" example:"problem not found"`
}
