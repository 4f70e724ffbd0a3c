package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/vpms/internal/domain/entity"
)

func TestVisitorWhere(t *testing.T) {
	rid := int64(7)
	w := visitorWhere(&rid, entity.VisitorPendingStatuses)

	assert.Equal(t, "record_type = 'visitor' AND resident_id = $1 AND status = ANY($2)", w.sql())
	assert.Equal(t, []any{int64(7), []string{"new", "waiting_approval"}}, w.args)
	assert.Equal(t, 3, w.next())
}

func TestParcelWhereNoFilters(t *testing.T) {
	w := parcelWhere(nil, nil)
	assert.Equal(t, "record_type = 'parcel'", w.sql())
	assert.Empty(t, w.args)
	assert.Equal(t, 1, w.next())
}

func TestLimitArg(t *testing.T) {
	assert.Nil(t, limitArg(0))
	assert.Equal(t, 5, *limitArg(5))
}
