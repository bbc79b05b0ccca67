package server

import (
	"errors"
	"net/http"

	"github.com/fuckp0/feedsheild/internal/apperrors"
	"github.com/fuckp0/feedsheild/internal/auth"
	"github.com/fuckp0/feedsheild/internal/models"
	"github.com/fuckp0/feedsheild/internal/sentry"

	"github.com/gin-gonic/gin"
)

type credentialsReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup registers a new user with a bcrypt-hashed password.
func (s *Server) Signup(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "signup: hashing password")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create user"})
		return
	}

	user := models.User{Email: req.Email, PasswordHash: hash}
	if err := s.store.CreateUser(&user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
			return
		}
		sentry.CaptureErrorWithContext(c, err, "signup: creating user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signup successful"})
}

// Login verifies credentials and issues a 30-minute bearer token.
func (s *Server) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body"})
		return
	}

	user, err := s.store.GetUserByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			sentry.CaptureErrorWithContext(c, err, "login: looking up user")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Login error"})
			return
		}
		user = nil
	}

	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect email or password"})
		return
	}

	token, err := auth.GenerateToken(s.cfg.JWTSecret, user.ID, user.Email)
	if err != nil {
		sentry.CaptureErrorWithContext(c, err, "login: generating token")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}
