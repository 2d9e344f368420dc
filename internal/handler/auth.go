package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tddymnbt/CRCMS-API/internal/dto"
	"github.com/tddymnbt/CRCMS-API/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary  Authenticate and obtain an access token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body dto.LoginRequest true "Credentials"
// @Success  200 {object} dto.LoginResponse
// @Failure  401 {object} apierror.APIError
// @Router   /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateUser godoc
// @Summary  Create a system user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    request body dto.CreateUserRequest true "User"
// @Success  201 {object} dto.UserResponse
// @Failure  409 {object} apierror.APIError
// @Security BearerAuth
// @Router   /v1/auth/users [post]
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.auth.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
