package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/internal/application"
	"github.com/oksasatya/vpms/internal/interface/middleware"
	"github.com/oksasatya/vpms/pkg/pagination"
	"github.com/oksasatya/vpms/pkg/response"
)

type VisitorHandler struct {
	Svc *application.VisitorService
}

func NewVisitorHandler(svc *application.VisitorService) *VisitorHandler {
	return &VisitorHandler{Svc: svc}
}

type createVisitorRequest struct {
	ResidentID        int64      `json:"resident_id"`
	VisitorName       string     `json:"visitor_name"`
	VisitorPhone      string     `json:"visitor_phone"`
	VisitorPurpose    string     `json:"visitor_purpose"`
	ExpectedEntryTime *time.Time `json:"expected_entry_time"`
	ExitTime          *time.Time `json:"exit_time"`
}

type visitorStatusRequest struct {
	Status       string     `json:"status"`
	ArrivedAt    *time.Time `json:"arrived_at"`
	CheckedInAt  *time.Time `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at"`
}

func (h *VisitorHandler) Create(c *gin.Context) {
	var req createVisitorRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.Svc.Create(c.Request.Context(), middleware.Actor(c), application.CreateVisitorInput{
		ResidentID: req.ResidentID,
		Name:       req.VisitorName,
		Phone:      req.VisitorPhone,
		Purpose:    req.VisitorPurpose,
		ExpectedAt: req.ExpectedEntryTime,
		ExitAt:     req.ExitTime,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, toVisitor(v), "visitor registered", nil)
}

// List accepts ?status=&resident_id=&page=&page_size=.
func (h *VisitorHandler) List(c *gin.Context) {
	residentID, ok := optionalQueryID(c, "resident_id")
	if !ok {
		return
	}
	p := pagination.ParsePage(c.Query("page"), c.Query("page_size"))
	out, total, err := h.Svc.List(c.Request.Context(), middleware.Actor(c), application.VisitorListQuery{
		Status:     c.Query("status"),
		ResidentID: residentID,
		Page:       p,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toVisitors(out), "", p.Meta(total))
}

func (h *VisitorHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.Svc.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toVisitor(v), "", nil)
}

func (h *VisitorHandler) Pending(c *gin.Context) {
	residentID, ok := pathID(c, "residentId")
	if !ok {
		return
	}
	p := pagination.ParsePage(c.Query("page"), c.Query("page_size"))
	out, total, err := h.Svc.Pending(c.Request.Context(), middleware.Actor(c), residentID, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toVisitors(out), "", p.Meta(total))
}

func (h *VisitorHandler) History(c *gin.Context) {
	residentID, ok := pathID(c, "residentId")
	if !ok {
		return
	}
	p := pagination.ParsePage(c.Query("page"), c.Query("page_size"))
	out, total, err := h.Svc.History(c.Request.Context(), middleware.Actor(c), residentID, p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toVisitors(out), "", p.Meta(total))
}

func (h *VisitorHandler) PendingCount(c *gin.Context) {
	residentID, ok := pathID(c, "residentId")
	if !ok {
		return
	}
	n, err := h.Svc.PendingCount(c.Request.Context(), middleware.Actor(c), residentID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, countResponse{ResidentID: residentID, Count: n}, "", nil)
}

func (h *VisitorHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req visitorStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.Svc.UpdateStatus(c.Request.Context(), middleware.Actor(c), id, application.VisitorStatusInput{
		Status:       req.Status,
		ArrivedAt:    req.ArrivedAt,
		CheckedInAt:  req.CheckedInAt,
		CheckedOutAt: req.CheckedOutAt,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toVisitor(v), "visitor status updated", nil)
}

func (h *VisitorHandler) Search(c *gin.Context) {
	hits, err := h.Svc.Search(c.Request.Context(), middleware.Actor(c), c.Query("q"), searchSize(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, hits, "", gin.H{"total": len(hits)})
}
