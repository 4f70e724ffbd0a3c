package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/internal/domain/policy"
	repo "github.com/oksasatya/vpms/internal/domain/repository"
	"github.com/oksasatya/vpms/internal/infrastructure/search"
	"github.com/oksasatya/vpms/pkg/apperror"
	"github.com/oksasatya/vpms/pkg/helpers"
	mailtpl "github.com/oksasatya/vpms/pkg/mailer/templates"
	"github.com/oksasatya/vpms/pkg/pagination"
	"github.com/oksasatya/vpms/pkg/validation"
)

type ParcelService struct {
	Parcels repo.ParcelRepository
	Users   repo.UserRepository
	Photos  PhotoStore
	Effects *Effects
	Strict  bool
	now     func() time.Time
}

func NewParcelService(parcels repo.ParcelRepository, users repo.UserRepository, photos PhotoStore, effects *Effects, strict bool) *ParcelService {
	return &ParcelService{Parcels: parcels, Users: users, Photos: photos, Effects: effects, Strict: strict, now: time.Now}
}

type CreateParcelInput struct {
	ResidentID   int64  `json:"resident_id"`
	ParcelNumber string `json:"parcel_number"`
	SenderName   string `json:"sender_name"`
	SenderPhone  string `json:"sender_phone"`
	Description  string `json:"description"`
}

// PhotoUpload is a parcel photo as received from the client.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (s *ParcelService) log() *logrus.Entry {
	if s.Effects == nil {
		return helpers.Component(nil, "parcels")
	}
	return helpers.Component(s.Effects.Logger, "parcels")
}

func (s *ParcelService) Create(ctx context.Context, actor policy.Actor, in CreateParcelInput) (*entity.Parcel, error) {
	if err := policy.Authorize(actor, policy.OpCreateParcel, 0); err != nil {
		return nil, err
	}
	in.ParcelNumber = strings.TrimSpace(in.ParcelNumber)
	in.SenderName = strings.TrimSpace(in.SenderName)
	in.SenderPhone = strings.TrimSpace(in.SenderPhone)
	in.Description = strings.TrimSpace(in.Description)

	details := map[string]string{}
	if in.ResidentID <= 0 {
		details["resident_id"] = "is required"
	}
	if in.ParcelNumber == "" {
		details["parcel_number"] = "is required"
	}
	if in.SenderName == "" {
		details["sender_name"] = "is required"
	}
	if in.SenderPhone != "" && !validation.IsPhone(in.SenderPhone) {
		details["sender_phone"] = "must be a valid phone number"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("resident_id, parcel_number and sender_name are required", details)
	}

	resident, err := loadResident(ctx, s.Users, in.ResidentID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &entity.Parcel{
		ResidentID:   in.ResidentID,
		ParcelNumber: in.ParcelNumber,
		SenderName:   in.SenderName,
		SenderPhone:  optional(in.SenderPhone),
		Description:  optional(in.Description),
		Status:       entity.ParcelReceived,
		ReceivedAt:   &now,
	}
	if err := s.Parcels.Create(ctx, p); err != nil {
		return nil, apperror.Internal(err)
	}
	s.log().WithFields(logrus.Fields{"parcel_id": p.ID, "resident_id": p.ResidentID, "by": actor.ID}).Info("parcel received")

	s.Effects.indexParcel(ctx, p)
	s.Effects.invalidate(ctx, kindParcels, p.ResidentID)
	opts := []mailtpl.Option{
		mailtpl.WithField("ParcelNumber", p.ParcelNumber),
		mailtpl.WithField("SenderName", p.SenderName),
		mailtpl.WithTime(now),
	}
	if p.Description != nil {
		opts = append(opts, mailtpl.WithField("Description", *p.Description))
	}
	s.Effects.notify(ctx, resident, mailtpl.ParcelReceived, opts...)
	return p, nil
}

// Get returns a parcel; residents only see their own.
func (s *ParcelService) Get(ctx context.Context, actor policy.Actor, id int64) (*entity.Parcel, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.OpViewParcel, p.ResidentID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ParcelService) List(ctx context.Context, actor policy.Actor, status string, o pagination.Offset) ([]entity.Parcel, int, error) {
	if err := policy.Authorize(actor, policy.OpListParcels, 0); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, repo.ParcelFilter{Statuses: parcelStatusFilter(status), Limit: o.Limit, Offset: o.Offset})
}

// ByResident lists the resident's parcels, optionally narrowed to one status.
func (s *ParcelService) ByResident(ctx context.Context, actor policy.Actor, residentID int64, status string, o pagination.Offset) ([]entity.Parcel, int, error) {
	if err := policy.Authorize(actor, policy.OpViewResidentParcels, residentID); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, repo.ParcelFilter{ResidentID: &residentID, Statuses: parcelStatusFilter(status), Limit: o.Limit, Offset: o.Offset})
}

// History lists every parcel of the resident, newest first.
func (s *ParcelService) History(ctx context.Context, actor policy.Actor, residentID int64, o pagination.Offset) ([]entity.Parcel, int, error) {
	return s.ByResident(ctx, actor, residentID, "", o)
}

func (s *ParcelService) PendingCount(ctx context.Context, actor policy.Actor, residentID int64) (int, error) {
	if err := policy.Authorize(actor, policy.OpViewResidentParcels, residentID); err != nil {
		return 0, err
	}
	n, err := s.Effects.cachedCount(ctx, kindParcels, residentID, func() (int, error) {
		return s.Parcels.CountByResident(ctx, residentID, entity.ParcelPendingStatuses)
	})
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

// UpdateStatus stamps the target status with the current time unless the
// stamp is already set.
func (s *ParcelService) UpdateStatus(ctx context.Context, actor policy.Actor, id int64, status string) (*entity.Parcel, error) {
	to, ok := entity.ParcelLifecycle.Parse(strings.TrimSpace(status))
	if !ok {
		return nil, apperror.Validation("invalid status", map[string]string{"status": "must be one of: " + joinStatuses(entity.ParcelLifecycle.States())})
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ParcelStatusOp(to), p.ResidentID); err != nil {
		return nil, err
	}
	from := p.Status
	if !entity.ParcelLifecycle.Permits(from, to, s.Strict) {
		return nil, apperror.Validation("status transition not allowed", map[string]string{"status": string(from) + " cannot move to " + string(to)})
	}

	updated, err := s.Parcels.UpdateStatus(ctx, id, repo.ParcelStatusUpdate{Status: to, At: s.now().UTC()})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound("parcel not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.Effects.transition("parcel", string(from), string(to), entity.ParcelLifecycle.CanTransition(from, to))
	s.log().WithFields(logrus.Fields{"parcel_id": id, "from": from, "to": to, "by": actor.ID}).Info("parcel status updated")
	s.Effects.indexParcel(ctx, updated)
	s.Effects.invalidate(ctx, kindParcels, updated.ResidentID)
	return updated, nil
}

func (s *ParcelService) Acknowledge(ctx context.Context, actor policy.Actor, id int64) (*entity.Parcel, error) {
	return s.UpdateStatus(ctx, actor, id, string(entity.ParcelAcknowledged))
}

// AttachPhoto uploads a photo to object storage and records its public URL.
func (s *ParcelService) AttachPhoto(ctx context.Context, actor policy.Actor, id int64, photo PhotoUpload) (*entity.Parcel, error) {
	if err := policy.Authorize(actor, policy.OpAttachParcelPhoto, 0); err != nil {
		return nil, err
	}
	if s.Photos == nil {
		return nil, apperror.Validation("photo storage is not configured", nil)
	}
	if photo.Body == nil || photo.Size <= 0 {
		return nil, apperror.Validation("photo is required", map[string]string{"photo": "is required"})
	}
	if photo.ContentType != "" && !strings.HasPrefix(photo.ContentType, "image/") {
		return nil, apperror.Validation("photo must be an image", map[string]string{"photo": "must be an image"})
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.Photos.PutParcelPhoto(ctx, id, photo.Filename, photo.Body, photo.Size, photo.ContentType)
	if err != nil {
		s.log().WithError(err).WithField("parcel_id", id).Error("upload parcel photo failed")
		return nil, apperror.Internal(err)
	}
	updated, err := s.Parcels.SetPhotoURL(ctx, id, url)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound("parcel not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	s.Effects.indexParcel(ctx, updated)
	return updated, nil
}

func (s *ParcelService) Search(ctx context.Context, actor policy.Actor, q string, size int) ([]map[string]any, error) {
	if err := policy.Authorize(actor, policy.OpSearchRecords, 0); err != nil {
		return nil, err
	}
	hits, err := s.Effects.search(ctx, search.TypeParcel, strings.TrimSpace(q), size)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return hits, nil
}

func (s *ParcelService) load(ctx context.Context, id int64) (*entity.Parcel, error) {
	p, err := s.Parcels.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound("parcel not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return p, nil
}

func (s *ParcelService) list(ctx context.Context, f repo.ParcelFilter) ([]entity.Parcel, int, error) {
	out, total, err := s.Parcels.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return out, total, nil
}

func parcelStatusFilter(raw string) []entity.ParcelStatus {
	if st, ok := entity.ParcelLifecycle.Parse(strings.TrimSpace(raw)); ok {
		return []entity.ParcelStatus{st}
	}
	return nil
}
