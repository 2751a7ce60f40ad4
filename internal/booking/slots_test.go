package booking

import (
	"net/http"
	"testing"

	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableSlots(t *testing.T) {
	db := newTestDB(t)
	f := seedTenant(t, db, "detail-a")
	scoped := database.ScopedTo(db, f.tenant.ID)

	grid := []string{"08:00", "09:00", "10:00", "11:00"}

	free, err := AvailableSlots(scoped, grid, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, grid, free, "empty day offers the whole grid")

	createBooking(t, db, f, "2024-06-15", "09:00")
	cancelled := createBooking(t, db, f, "2024-06-15", "10:00")
	require.NoError(t, Cancel(db, cancelled))

	free, err = AvailableSlots(scoped, grid, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "10:00", "11:00"}, free, "cancelled slot is offered again")

	// Another day is unaffected
	free, err = AvailableSlots(scoped, grid, "2024-06-16")
	require.NoError(t, err)
	assert.Equal(t, grid, free)

	// Another tenant's bookings do not leak into this tenant's day
	b := seedTenant(t, db, "detail-b")
	createBooking(t, db, b, "2024-06-15", "08:00")
	free, err = AvailableSlots(scoped, grid, "2024-06-15")
	require.NoError(t, err)
	assert.Contains(t, free, "08:00")

	_, err = AvailableSlots(scoped, grid, "junk")
	assert.Equal(t, http.StatusBadRequest, model.HTTPStatus(err))
}
