package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/middleware"
	"github.com/stemsi/gscribe-backend/internal/model"
	"github.com/stemsi/gscribe-backend/internal/response"
	"github.com/stemsi/gscribe-backend/internal/service"
	"github.com/stemsi/gscribe-backend/internal/validator"
)

// AuthHandler handles the paper setter's spreadsheet authorization.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// Authenticate godoc
// POST /authenticate
// Exchanges an authorization code and stores offline spreadsheet access.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req model.AuthenticateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.Authenticate(c.Request.Context(), middleware.GetUserID(c), req.AuthCode); err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"authenticated": true})
}

// CheckAuthentication godoc
// GET /authenticate
// Reports whether spreadsheet access has been granted.
func (h *AuthHandler) CheckAuthentication(c *gin.Context) {
	if err := h.authService.Check(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"authenticated": true})
}
