// Package policy decides which roles may perform which operations, and when
// a resident must own the record being touched.
package policy

import (
	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/pkg/apperror"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   int64
	Role entity.Role
}

func ActorOf(u *entity.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{ID: u.ID, Role: u.Role}
}

type Operation string

const (
	OpCreateVisitor        Operation = "create_visitor"
	OpListVisitors         Operation = "list_visitors"
	OpViewVisitor          Operation = "view_visitor"
	OpViewResidentVisitors Operation = "view_resident_visitors"
	OpDecideVisitor        Operation = "decide_visitor"
	OpMoveVisitor          Operation = "move_visitor"

	OpCreateParcel        Operation = "create_parcel"
	OpListParcels         Operation = "list_parcels"
	OpViewParcel          Operation = "view_parcel"
	OpViewResidentParcels Operation = "view_resident_parcels"
	OpReceiveParcel       Operation = "receive_parcel"
	OpAcknowledgeParcel   Operation = "acknowledge_parcel"
	OpCollectParcel       Operation = "collect_parcel"
	OpAttachParcelPhoto   Operation = "attach_parcel_photo"

	OpSearchRecords Operation = "search_records"
	OpListResidents Operation = "list_residents"
	OpManageUsers   Operation = "manage_users"
)

type rule struct {
	roles []entity.Role
	// ownerScoped requires a resident actor to be the record's owner.
	ownerScoped bool
	reason      string
}

var (
	staff    = []entity.Role{entity.RoleGuard, entity.RoleAdmin}
	everyone = []entity.Role{entity.RoleAdmin, entity.RoleGuard, entity.RoleResident}
	resident = []entity.Role{entity.RoleResident}
)

var rules = map[Operation]rule{
	OpCreateVisitor:        {roles: staff, reason: "only guards or admins can register visitors"},
	OpListVisitors:         {roles: staff, reason: "only guards or admins can list all visitors"},
	OpViewVisitor:          {roles: everyone, reason: "authentication required"},
	OpViewResidentVisitors: {roles: everyone, ownerScoped: true, reason: "residents can only view their own visitors"},
	OpDecideVisitor:        {roles: resident, ownerScoped: true, reason: "only the owning resident can approve or reject a visitor"},
	OpMoveVisitor:          {roles: staff, reason: "only guards or admins can set this visitor status"},

	OpCreateParcel:        {roles: staff, reason: "only guards or admins can register parcels"},
	OpListParcels:         {roles: staff, reason: "only guards or admins can list all parcels"},
	OpViewParcel:          {roles: everyone, ownerScoped: true, reason: "residents can only view their own parcels"},
	OpViewResidentParcels: {roles: everyone, ownerScoped: true, reason: "residents can only view their own parcels"},
	OpReceiveParcel:       {roles: []entity.Role{entity.RoleGuard}, reason: "only guards can mark a parcel as received"},
	OpAcknowledgeParcel:   {roles: resident, ownerScoped: true, reason: "only the owning resident can acknowledge a parcel"},
	OpCollectParcel:       {roles: resident, ownerScoped: true, reason: "only the owning resident can mark a parcel as collected"},
	OpAttachParcelPhoto:   {roles: staff, reason: "only guards or admins can attach parcel photos"},

	OpSearchRecords: {roles: staff, reason: "only guards or admins can search records"},
	OpListResidents: {roles: staff, reason: "only guards or admins can list residents"},
	OpManageUsers:   {roles: []entity.Role{entity.RoleAdmin}, reason: "only admins can manage users"},
}

// Authorize returns nil when actor may perform op on a record owned by
// ownerID, or a FORBIDDEN error. ownerID is ignored for non-scoped rules.
func Authorize(actor Actor, op Operation, ownerID int64) error {
	r, ok := rules[op]
	if !ok {
		return apperror.Forbidden("operation not permitted")
	}
	if !hasRole(r.roles, actor.Role) {
		return apperror.Forbidden(r.reason)
	}
	if r.ownerScoped && actor.Role == entity.RoleResident && actor.ID != ownerID {
		return apperror.Forbidden(r.reason)
	}
	return nil
}

// Allowed is Authorize as a boolean.
func Allowed(actor Actor, op Operation, ownerID int64) bool {
	return Authorize(actor, op, ownerID) == nil
}

// VisitorStatusOp maps a target visitor status to the operation that sets it.
func VisitorStatusOp(s entity.VisitorStatus) Operation {
	switch s {
	case entity.VisitorApproved, entity.VisitorRejected:
		return OpDecideVisitor
	default:
		return OpMoveVisitor
	}
}

// ParcelStatusOp maps a target parcel status to the operation that sets it.
func ParcelStatusOp(s entity.ParcelStatus) Operation {
	switch s {
	case entity.ParcelAcknowledged:
		return OpAcknowledgeParcel
	case entity.ParcelCollected:
		return OpCollectParcel
	default:
		return OpReceiveParcel
	}
}

func hasRole(roles []entity.Role, r entity.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}
