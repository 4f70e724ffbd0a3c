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

// MaxPhotoBytes bounds parcel photo uploads.
const MaxPhotoBytes = 5 << 20

type ParcelHandler struct {
	Svc *application.ParcelService
}

func NewParcelHandler(svc *application.ParcelService) *ParcelHandler {
	return &ParcelHandler{Svc: svc}
}

type createParcelRequest struct {
	ResidentID   int64  `json:"resident_id"`
	ParcelNumber string `json:"parcel_number"`
	SenderName   string `json:"sender_name"`
	SenderPhone  string `json:"sender_phone"`
	Description  string `json:"description"`
}

type parcelStatusRequest struct {
	Status string `json:"status"`
}

func (h *ParcelHandler) Create(c *gin.Context) {
	var req createParcelRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), middleware.Actor(c), application.CreateParcelInput(req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, toParcel(p), "parcel received", nil)
}

// List accepts ?status=&limit=&offset=.
func (h *ParcelHandler) List(c *gin.Context) {
	o := pagination.ParseOffset(c.Query("limit"), c.Query("offset"))
	out, total, err := h.Svc.List(c.Request.Context(), middleware.Actor(c), c.Query("status"), o)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toParcels(out), "", o.Meta(total))
}

func (h *ParcelHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Svc.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toParcel(p), "", nil)
}

func (h *ParcelHandler) ByResident(c *gin.Context) {
	residentID, ok := pathID(c, "residentId")
	if !ok {
		return
	}
	o := pagination.ParseOffset(c.Query("limit"), c.Query("offset"))
	out, total, err := h.Svc.ByResident(c.Request.Context(), middleware.Actor(c), residentID, c.Query("status"), o)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toParcels(out), "", o.Meta(total))
}

func (h *ParcelHandler) History(c *gin.Context) {
	residentID, ok := pathID(c, "residentId")
	if !ok {
		return
	}
	o := pagination.ParseOffset(c.Query("limit"), c.Query("offset"))
	out, total, err := h.Svc.History(c.Request.Context(), middleware.Actor(c), residentID, o)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toParcels(out), "", o.Meta(total))
}

func (h *ParcelHandler) PendingCount(c *gin.Context) {
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

func (h *ParcelHandler) Acknowledge(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.Svc.Acknowledge(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toParcel(p), "parcel acknowledged", nil)
}

func (h *ParcelHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req parcelStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.UpdateStatus(c.Request.Context(), middleware.Actor(c), id, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toParcel(p), "parcel status updated", nil)
}

// AttachPhoto takes a multipart form with a "photo" file field.
func (h *ParcelHandler) AttachPhoto(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxPhotoBytes+1<<20)
	fh, err := c.FormFile("photo")
	if err != nil {
		_ = c.Error(apperror.Validation("photo is required", map[string]string{"photo": "is required"}))
		return
	}
	if fh.Size > MaxPhotoBytes {
		_ = c.Error(apperror.Validation("photo is too large", map[string]string{"photo": "must be at most 5MB"}))
		return
	}
	f, err := fh.Open()
	if err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	defer func() { _ = f.Close() }()

	p, err := h.Svc.AttachPhoto(c.Request.Context(), middleware.Actor(c), id, application.PhotoUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, toParcel(p), "photo attached", nil)
}

func (h *ParcelHandler) Search(c *gin.Context) {
	hits, err := h.Svc.Search(c.Request.Context(), middleware.Actor(c), c.Query("q"), searchSize(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, hits, "", gin.H{"total": len(hits)})
}
