package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/internal/application"
	"github.com/oksasatya/vpms/internal/interface/middleware"
	"github.com/oksasatya/vpms/pkg/apperror"
	"github.com/oksasatya/vpms/pkg/pagination"
	"github.com/oksasatya/vpms/pkg/response"
)

type AdminHandler struct {
	Users *application.UserService
}

func NewAdminHandler(users *application.UserService) *AdminHandler {
	return &AdminHandler{Users: users}
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// ListUsers accepts ?role=&page=&page_size=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	p := pagination.ParsePage(c.Query("page"), c.Query("page_size"))
	out, total, err := h.Users.List(c.Request.Context(), middleware.Actor(c), c.Query("role"), p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toUsers(out), "", p.Meta(total))
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Users.Create(c.Request.Context(), middleware.Actor(c), application.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, toUser(u), "user created", nil)
}

func (h *AdminHandler) SetActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Active == nil {
		_ = c.Error(apperror.Validation("active is required", map[string]string{"active": "is required"}))
		return
	}
	u, err := h.Users.SetActive(c.Request.Context(), middleware.Actor(c), id, *req.Active)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "user updated", nil)
}
