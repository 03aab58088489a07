package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"stockmate/internal/access"
	"stockmate/internal/middleware"
	"stockmate/internal/models"
	"stockmate/internal/repository"
)

type AuthHandler struct {
	users     *repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthHandler(users *repository.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

type registerRequest struct {
	Name       string   `json:"name" binding:"required"`
	Email      string   `json:"email" binding:"required,email"`
	Password   string   `json:"password" binding:"required,min=6"`
	Role       string   `json:"role"`
	Categories []string `json:"categories"`
	Phone      string   `json:"phone"`
}

// POST /v1/auth/register (admin only)
//
// Admins create accounts and assign the role and category scope the access
// policy will enforce. There is no self-service signup.
func (h *AuthHandler) Register(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)
	if !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "admin access required"})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = string(access.RoleEmployee)
	}
	if !access.ValidRole(access.Role(role)) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown role", Field: "role"})
		return
	}
	categories, err := parseObjectIDs(req.Categories, "categories")
	if err != nil {
		writeError(c, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "could not hash password"})
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         role,
		Categories:   categories,
		Phone:        req.Phone,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid email or password"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid email or password"})
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user.ID, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
