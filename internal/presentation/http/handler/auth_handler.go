package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/retailpos-api/internal/application/service"
	"github.com/sangkips/retailpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/retailpos-api/internal/presentation/http/dto/response"
)

// AuthHandler signs operators in at a till
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles operator login
// @Summary Operator login
// @Description Sign a cashier or admin in and return a bearer token with the operator's role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.OperatorLoginRequest true "Operator credentials"
// @Success 200 {object} response.OperatorSession
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.OperatorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	tillID := strings.TrimSpace(req.TillID)
	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		TillID:   tillID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Signed in as "+output.User.Role,
		response.NewOperatorSession(output.User, tillID, output.AccessToken, output.ExpiresIn))
}
