// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// The `db` tags work with sqlx for database column mapping; the database
// package handles persistence.
package models

import (
	"time"
)

// User represents a registered LegalLite account.
// Mode and CurrentPage persist the user's session choices between requests.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // "-" means never serialize to JSON
	Mode         string    `json:"mode" db:"mode"`       // "" until a mode is chosen
	CurrentPage  string    `json:"current_page" db:"current_page"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Upload is one entry of a user's append-only history: the file that was
// simplified and the summary produced for it.
type Upload struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Filename  string    `json:"filename" db:"filename"`
	Summary   string    `json:"summary" db:"summary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// --- Request/Response DTOs (Data Transfer Objects) ---

// RegisterRequest is the JSON body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"` // bcrypt input limit
}

// LoginRequest is the JSON body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned after a successful login or registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ChooseModeRequest is the JSON body for PUT /api/v1/session/mode.
type ChooseModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// NavigateRequest is the JSON body for PUT /api/v1/session/page.
type NavigateRequest struct {
	Page string `json:"page" binding:"required"`
}

// ExtractResponse is returned by POST /api/v1/documents/extract.
type ExtractResponse struct {
	Filename  string `json:"filename"`
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
	WordCount int    `json:"word_count"`
}

// SimplifyResponse is returned by POST /api/v1/documents/simplify.
//
// SummaryWarning is set when the configured summarizer failed and the
// placeholder text was used instead. AudioError is set when voice synthesis
// failed; the rest of the response is still valid.
type SimplifyResponse struct {
	HistoryID      string `json:"history_id,omitempty"`
	Filename       string `json:"filename"`
	Summary        string `json:"summary"`
	Summarizer     string `json:"summarizer"`
	SummaryWarning string `json:"summary_warning,omitempty"`
	DownloadName   string `json:"download_name"`
	DownloadURL    string `json:"download_url,omitempty"`
	AudioURL       string `json:"audio_url,omitempty"`
	AudioError     string `json:"audio_error,omitempty"`
}

// RiskScanResponse is returned by POST /api/v1/documents/risky-terms.
type RiskScanResponse struct {
	Filename string   `json:"filename"`
	Found    []string `json:"found"`
	Risky    bool     `json:"risky"`
	Checked  []string `json:"checked"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Database   string `json:"database"`
	Summarizer string `json:"summarizer"`
	Voice      bool   `json:"voice"`
	RiskyTerms int    `json:"risky_terms"`
}
