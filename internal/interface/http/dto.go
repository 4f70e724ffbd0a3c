package handlers

import (
	"time"

	"github.com/oksasatya/vpms/internal/domain/entity"
)

type userResponse struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUser(u *entity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUsers(in []entity.User) []userResponse {
	out := make([]userResponse, 0, len(in))
	for i := range in {
		out = append(out, toUser(&in[i]))
	}
	return out
}

type visitorResponse struct {
	ID           int64      `json:"id"`
	ResidentID   int64      `json:"resident_id"`
	VisitorName  string     `json:"visitor_name"`
	VisitorPhone *string    `json:"visitor_phone"`
	Purpose      *string    `json:"visitor_purpose"`
	Status       string     `json:"status"`
	ExpectedAt   *time.Time `json:"expected_entry_time"`
	ArrivedAt    *time.Time `json:"arrived_at"`
	CheckedInAt  *time.Time `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toVisitor(v *entity.Visitor) visitorResponse {
	return visitorResponse{
		ID:           v.ID,
		ResidentID:   v.ResidentID,
		VisitorName:  v.Name,
		VisitorPhone: v.Phone,
		Purpose:      v.Purpose,
		Status:       string(v.Status),
		ExpectedAt:   v.ExpectedAt,
		ArrivedAt:    v.ArrivedAt,
		CheckedInAt:  v.CheckedInAt,
		CheckedOutAt: v.CheckedOutAt,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func toVisitors(in []entity.Visitor) []visitorResponse {
	out := make([]visitorResponse, 0, len(in))
	for i := range in {
		out = append(out, toVisitor(&in[i]))
	}
	return out
}

type parcelResponse struct {
	ID             int64      `json:"id"`
	ResidentID     int64      `json:"resident_id"`
	ParcelNumber   string     `json:"parcel_number"`
	SenderName     string     `json:"sender_name"`
	SenderPhone    *string    `json:"sender_phone"`
	Description    *string    `json:"description"`
	PhotoURL       *string    `json:"photo_url"`
	Status         string     `json:"status"`
	ReceivedAt     *time.Time `json:"received_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	CollectedAt    *time.Time `json:"collected_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toParcel(p *entity.Parcel) parcelResponse {
	return parcelResponse{
		ID:             p.ID,
		ResidentID:     p.ResidentID,
		ParcelNumber:   p.ParcelNumber,
		SenderName:     p.SenderName,
		SenderPhone:    p.SenderPhone,
		Description:    p.Description,
		PhotoURL:       p.PhotoURL,
		Status:         string(p.Status),
		ReceivedAt:     p.ReceivedAt,
		AcknowledgedAt: p.AcknowledgedAt,
		CollectedAt:    p.CollectedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toParcels(in []entity.Parcel) []parcelResponse {
	out := make([]parcelResponse, 0, len(in))
	for i := range in {
		out = append(out, toParcel(&in[i]))
	}
	return out
}

type countResponse struct {
	ResidentID int64 `json:"resident_id"`
	Count      int   `json:"count"`
}
