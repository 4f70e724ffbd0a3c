package application

import (
	"context"
	"errors"
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

type VisitorService struct {
	Visitors repo.VisitorRepository
	Users    repo.UserRepository
	Effects  *Effects
	// Strict rejects transitions missing from entity.VisitorLifecycle.
	Strict bool
}

func NewVisitorService(visitors repo.VisitorRepository, users repo.UserRepository, effects *Effects, strict bool) *VisitorService {
	return &VisitorService{Visitors: visitors, Users: users, Effects: effects, Strict: strict}
}

// CreateVisitorInput registers a visitor at the gate.
type CreateVisitorInput struct {
	ResidentID int64      `json:"resident_id"`
	Name       string     `json:"visitor_name"`
	Phone      string     `json:"visitor_phone"`
	Purpose    string     `json:"visitor_purpose"`
	ExpectedAt *time.Time `json:"expected_entry_time"`
	ExitAt     *time.Time `json:"exit_time"`
}

// VisitorStatusInput is a requested status change with optional timestamps.
type VisitorStatusInput struct {
	Status       string
	ArrivedAt    *time.Time
	CheckedInAt  *time.Time
	CheckedOutAt *time.Time
}

func (s *VisitorService) log() *logrus.Entry {
	if s.Effects == nil {
		return helpers.Component(nil, "visitors")
	}
	return helpers.Component(s.Effects.Logger, "visitors")
}

func (s *VisitorService) Create(ctx context.Context, actor policy.Actor, in CreateVisitorInput) (*entity.Visitor, error) {
	if err := policy.Authorize(actor, policy.OpCreateVisitor, 0); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Purpose = strings.TrimSpace(in.Purpose)

	details := map[string]string{}
	if in.ResidentID <= 0 {
		details["resident_id"] = "is required"
	}
	if in.Name == "" {
		details["visitor_name"] = "is required"
	}
	if in.Phone != "" && !validation.IsPhone(in.Phone) {
		details["visitor_phone"] = "must be a valid phone number"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("resident_id and visitor_name are required", details)
	}

	resident, err := loadResident(ctx, s.Users, in.ResidentID)
	if err != nil {
		return nil, err
	}

	v := &entity.Visitor{
		ResidentID:   in.ResidentID,
		Name:         in.Name,
		Phone:        optional(in.Phone),
		Purpose:      optional(in.Purpose),
		Status:       entity.VisitorNew,
		ExpectedAt:   in.ExpectedAt,
		CheckedOutAt: in.ExitAt,
	}
	if err := s.Visitors.Create(ctx, v); err != nil {
		return nil, apperror.Internal(err)
	}
	s.log().WithFields(logrus.Fields{"visitor_id": v.ID, "resident_id": v.ResidentID, "by": actor.ID}).Info("visitor registered")

	s.Effects.indexVisitor(ctx, v)
	s.Effects.invalidate(ctx, kindVisitors, v.ResidentID)
	opts := []mailtpl.Option{
		mailtpl.WithField("VisitorName", v.Name),
		mailtpl.WithTime(v.CreatedAt),
	}
	if v.Purpose != nil {
		opts = append(opts, mailtpl.WithField("Purpose", *v.Purpose))
	}
	if v.ExpectedAt != nil {
		opts = append(opts, mailtpl.WithField("ExpectedAt", v.ExpectedAt.UTC().Format(time.RFC1123)))
	}
	s.Effects.notify(ctx, resident, mailtpl.VisitorAwaitingApproval, opts...)
	return v, nil
}

// Get returns any visitor to any authenticated caller.
func (s *VisitorService) Get(ctx context.Context, actor policy.Actor, id int64) (*entity.Visitor, error) {
	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.OpViewVisitor, v.ResidentID); err != nil {
		return nil, err
	}
	return v, nil
}

// VisitorListQuery narrows the staff-wide listing. Unknown statuses are ignored.
type VisitorListQuery struct {
	Status     string
	ResidentID *int64
	Page       pagination.Page
}

func (s *VisitorService) List(ctx context.Context, actor policy.Actor, q VisitorListQuery) ([]entity.Visitor, int, error) {
	if err := policy.Authorize(actor, policy.OpListVisitors, 0); err != nil {
		return nil, 0, err
	}
	f := repo.VisitorFilter{ResidentID: q.ResidentID, Limit: q.Page.Limit(), Offset: q.Page.Offset()}
	if st, ok := entity.VisitorLifecycle.Parse(strings.TrimSpace(q.Status)); ok {
		f.Statuses = []entity.VisitorStatus{st}
	}
	return s.list(ctx, f)
}

// Pending lists the resident's visitors still in new or waiting_approval.
func (s *VisitorService) Pending(ctx context.Context, actor policy.Actor, residentID int64, p pagination.Page) ([]entity.Visitor, int, error) {
	if err := policy.Authorize(actor, policy.OpViewResidentVisitors, residentID); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, repo.VisitorFilter{
		ResidentID: &residentID,
		Statuses:   entity.VisitorPendingStatuses,
		Limit:      p.Limit(),
		Offset:     p.Offset(),
	})
}

// History lists every visitor of the resident, newest first.
func (s *VisitorService) History(ctx context.Context, actor policy.Actor, residentID int64, p pagination.Page) ([]entity.Visitor, int, error) {
	if err := policy.Authorize(actor, policy.OpViewResidentVisitors, residentID); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, repo.VisitorFilter{ResidentID: &residentID, Limit: p.Limit(), Offset: p.Offset()})
}

func (s *VisitorService) PendingCount(ctx context.Context, actor policy.Actor, residentID int64) (int, error) {
	if err := policy.Authorize(actor, policy.OpViewResidentVisitors, residentID); err != nil {
		return 0, err
	}
	n, err := s.Effects.cachedCount(ctx, kindVisitors, residentID, func() (int, error) {
		return s.Visitors.CountByResident(ctx, residentID, entity.VisitorPendingStatuses)
	})
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return n, nil
}

// UpdateStatus checks, in order: the status value, the record, the caller's
// right to set that status, then the lifecycle.
func (s *VisitorService) UpdateStatus(ctx context.Context, actor policy.Actor, id int64, in VisitorStatusInput) (*entity.Visitor, error) {
	to, ok := entity.VisitorLifecycle.Parse(strings.TrimSpace(in.Status))
	if !ok {
		return nil, apperror.Validation("invalid status", map[string]string{"status": "must be one of: " + joinStatuses(entity.VisitorLifecycle.States())})
	}
	v, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.VisitorStatusOp(to), v.ResidentID); err != nil {
		return nil, err
	}
	from := v.Status
	if !entity.VisitorLifecycle.Permits(from, to, s.Strict) {
		return nil, apperror.Validation("status transition not allowed", map[string]string{"status": string(from) + " cannot move to " + string(to)})
	}

	updated, err := s.Visitors.UpdateStatus(ctx, id, repo.VisitorStatusUpdate{
		Status:       to,
		ArrivedAt:    in.ArrivedAt,
		CheckedInAt:  in.CheckedInAt,
		CheckedOutAt: in.CheckedOutAt,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound("visitor not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s.Effects.transition("visitor", string(from), string(to), entity.VisitorLifecycle.CanTransition(from, to))
	s.log().WithFields(logrus.Fields{"visitor_id": id, "from": from, "to": to, "by": actor.ID}).Info("visitor status updated")
	s.Effects.indexVisitor(ctx, updated)
	s.Effects.invalidate(ctx, kindVisitors, updated.ResidentID)
	return updated, nil
}

func (s *VisitorService) Search(ctx context.Context, actor policy.Actor, q string, size int) ([]map[string]any, error) {
	if err := policy.Authorize(actor, policy.OpSearchRecords, 0); err != nil {
		return nil, err
	}
	hits, err := s.Effects.search(ctx, search.TypeVisitor, strings.TrimSpace(q), size)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return hits, nil
}

func (s *VisitorService) load(ctx context.Context, id int64) (*entity.Visitor, error) {
	v, err := s.Visitors.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.NotFound("visitor not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return v, nil
}

func (s *VisitorService) list(ctx context.Context, f repo.VisitorFilter) ([]entity.Visitor, int, error) {
	out, total, err := s.Visitors.List(ctx, f)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return out, total, nil
}

// loadResident requires residentID to be an active resident.
func loadResident(ctx context.Context, users repo.UserRepository, residentID int64) (*entity.User, error) {
	u, err := users.GetByID(ctx, residentID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	if !u.IsActiveResident() {
		return nil, apperror.Validation("resident not found or inactive", map[string]string{"resident_id": "must reference an active resident"})
	}
	return u, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func joinStatuses[S ~string](states []S) string {
	parts := make([]string, len(states))
	for i, st := range states {
		parts[i] = string(st)
	}
	return strings.Join(parts, ", ")
}
