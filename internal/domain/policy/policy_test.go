package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/vpms/internal/domain/entity"
	"github.com/oksasatya/vpms/pkg/apperror"
)

var (
	admin    = Actor{ID: 1, Role: entity.RoleAdmin}
	guard    = Actor{ID: 2, Role: entity.RoleGuard}
	owner    = Actor{ID: 3, Role: entity.RoleResident}
	neighbor = Actor{ID: 4, Role: entity.RoleResident}
)

func TestAuthorizeTable(t *testing.T) {
	const ownerID = 3
	tests := []struct {
		op      Operation
		allowed []Actor
		denied  []Actor
	}{
		{OpCreateVisitor, []Actor{admin, guard}, []Actor{owner}},
		{OpViewVisitor, []Actor{admin, guard, owner, neighbor}, nil},
		{OpViewResidentVisitors, []Actor{admin, guard, owner}, []Actor{neighbor}},
		{OpDecideVisitor, []Actor{owner}, []Actor{admin, guard, neighbor}},
		{OpMoveVisitor, []Actor{admin, guard}, []Actor{owner}},
		{OpViewParcel, []Actor{admin, guard, owner}, []Actor{neighbor}},
		{OpReceiveParcel, []Actor{guard}, []Actor{admin, owner}},
		{OpAcknowledgeParcel, []Actor{owner}, []Actor{admin, guard, neighbor}},
		{OpCollectParcel, []Actor{owner}, []Actor{admin, guard, neighbor}},
		{OpListResidents, []Actor{admin, guard}, []Actor{owner}},
		{OpManageUsers, []Actor{admin}, []Actor{guard, owner}},
	}
	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			for _, a := range tt.allowed {
				assert.NoError(t, Authorize(a, tt.op, ownerID), "role %s", a.Role)
			}
			for _, a := range tt.denied {
				err := Authorize(a, tt.op, ownerID)
				assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err), "role %s id %d", a.Role, a.ID)
			}
		})
	}
}

func TestUnknownOperationDenied(t *testing.T) {
	assert.False(t, Allowed(admin, Operation("drop_tables"), 0))
}

func TestStatusOperations(t *testing.T) {
	assert.Equal(t, OpDecideVisitor, VisitorStatusOp(entity.VisitorApproved))
	assert.Equal(t, OpDecideVisitor, VisitorStatusOp(entity.VisitorRejected))
	assert.Equal(t, OpMoveVisitor, VisitorStatusOp(entity.VisitorEntered))
	assert.Equal(t, OpMoveVisitor, VisitorStatusOp(entity.VisitorWaitingApproval))

	assert.Equal(t, OpReceiveParcel, ParcelStatusOp(entity.ParcelReceived))
	assert.Equal(t, OpAcknowledgeParcel, ParcelStatusOp(entity.ParcelAcknowledged))
	assert.Equal(t, OpCollectParcel, ParcelStatusOp(entity.ParcelCollected))
}

func TestActorOf(t *testing.T) {
	assert.Equal(t, Actor{ID: 9, Role: entity.RoleGuard}, ActorOf(&entity.User{ID: 9, Role: entity.RoleGuard}))
	assert.Equal(t, Actor{}, ActorOf(nil))
}
