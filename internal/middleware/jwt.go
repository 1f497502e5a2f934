// Package middleware provides HTTP middleware for the API.
//
// Go Pattern: In Gin, middleware is a gin.HandlerFunc that calls c.Next() to
// continue the chain, or c.Abort() to stop processing.
//
// jwt.go authenticates Bearer tokens and attaches the caller's Session to the
// request context.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Shimizu-Technology/legallite-api/internal/models"
)

const sessionContextKey = "session"

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 72 * time.Hour

// UserLoader looks up the user a token belongs to.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// JWTClaims extends standard JWT claims with user info.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a new JWT token for a user.
func GenerateJWT(user *models.User, secret string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
			Issuer:    "legallite",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates and parses a JWT token string. Only HS256 is accepted.
func ParseJWT(tokenString, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		if claims.UserID == "" {
			return nil, errors.New("token has no user")
		}
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// JWTAuth returns middleware that validates JWT Bearer tokens, loads the
// user and stores a fresh Session for the request.
func JWTAuth(users UserLoader, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header. Use 'Bearer <token>'")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := ParseJWT(tokenString, jwtSecret)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abortUnauthorized(c, "User not found")
			return
		}

		c.Set(sessionContextKey, models.NewSession(user))
		c.Next()
	}
}

// RequireMode rejects requests whose session has not chosen a mode yet.
func RequireMode() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := GetSession(c)
		if s == nil || !s.ModeChosen {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "mode_not_chosen",
				Message: models.ErrModeNotChosen.Error(),
				Code:    http.StatusConflict,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession retrieves the request's session from the context.
func GetSession(c *gin.Context) *models.Session {
	val, exists := c.Get(sessionContextKey)
	if !exists {
		return nil
	}
	s, ok := val.(*models.Session)
	if !ok {
		return nil
	}
	return s
}

// GetUser retrieves the authenticated user from the request context.
func GetUser(c *gin.Context) *models.User {
	if s := GetSession(c); s != nil {
		return s.User
	}
	return nil
}

// SetSession stores s on the context, as JWTAuth does.
func SetSession(c *gin.Context, s *models.Session) {
	c.Set(sessionContextKey, s)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: msg,
		Code:    http.StatusUnauthorized,
	})
	c.Abort()
}
