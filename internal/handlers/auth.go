// auth.go handles user authentication HTTP endpoints.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shimizu-Technology/legallite-api/internal/database"
	"github.com/Shimizu-Technology/legallite-api/internal/middleware"
	"github.com/Shimizu-Technology/legallite-api/internal/models"
)

// Register creates a new user account.
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "A valid email and a password of 8 to 72 characters are required")
		return
	}

	// Hash password. The binding counts characters, bcrypt counts bytes.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "Password must be at most 72 bytes")
		return
	}
	if err != nil {
		log.Printf("❌ Failed to hash password: %v", err)
		errorJSON(c, http.StatusInternalServerError, "server_error", "Failed to create account")
		return
	}

	user := &models.User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
	}

	// The unique index on lower(email) is the source of truth for duplicates.
	if err := h.DB.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			errorJSON(c, http.StatusConflict, "email_taken", "An account with this email already exists")
			return
		}
		log.Printf("❌ Failed to create user: %v", err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to create account")
		return
	}

	log.Printf("👤 Registered user %s", user.ID)
	h.issueToken(c, http.StatusCreated, user)
}

// Login authenticates a user and returns a JWT token.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", "Email and password are required")
		return
	}

	// Unknown email and wrong password answer identically.
	user, err := h.DB.GetUserByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("❌ Failed to look up user: %v", err)
		}
		errorJSON(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		errorJSON(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

// GetMe returns the current authenticated user.
// GET /api/v1/auth/me
func (h *Handler) GetMe(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		errorJSON(c, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, user)
}

// RefreshToken issues a new JWT token for an authenticated user.
// POST /api/v1/auth/refresh
//
// This endpoint allows clients to obtain a fresh token before the current
// one expires.
func (h *Handler) RefreshToken(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		errorJSON(c, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

// Logout clears the session's mode and page. Tokens are stateless, so the
// client is expected to drop its token as well.
// POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	s := middleware.GetSession(c)
	if s == nil {
		errorJSON(c, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return
	}

	s.Reset()
	if err := h.DB.SaveSession(c.Request.Context(), s); err != nil {
		log.Printf("❌ Failed to reset session for %s: %v", s.User.ID, err)
		errorJSON(c, http.StatusInternalServerError, "database_error", "Failed to log out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) issueToken(c *gin.Context, status int, user *models.User) {
	token, err := middleware.GenerateJWT(user, h.JWTSecret)
	if err != nil {
		log.Printf("❌ Failed to generate token: %v", err)
		errorJSON(c, http.StatusInternalServerError, "token_error", "Failed to generate token")
		return
	}

	c.JSON(status, models.AuthResponse{
		Token: token,
		User:  *user,
	})
}
