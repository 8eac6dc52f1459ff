package trips

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wayhaul/wayhaul-backend/pkg/db/models"
	"github.com/wayhaul/wayhaul-backend/pkg/enums"
	"github.com/wayhaul/wayhaul-backend/pkg/pagination"
	"github.com/wayhaul/wayhaul-backend/pkg/types"
)

func setupTripsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	trips := `
CREATE TABLE IF NOT EXISTS trips (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  destination TEXT NOT NULL,
  departure_time DATETIME NOT NULL,
  estimated_return_time DATETIME NOT NULL,
  capacity INTEGER NOT NULL,
  available_capacity INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'announced',
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(trips).Error)
	return db
}

func seedTrip(t *testing.T, db *gorm.DB, capacity, available int) *models.Trip {
	t.Helper()

	trip := &models.Trip{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Destination: types.Destination{
			LocationID:  uuid.New(),
			Name:        "Trader Joe's Hillcrest",
			Coordinates: types.Coordinates{Lat: 32.7478, Lng: -117.1661},
		},
		DepartureTime:       time.Now().Add(time.Hour),
		EstimatedReturnTime: time.Now().Add(4 * time.Hour),
		Capacity:            capacity,
		AvailableCapacity:   available,
		Status:              enums.TripStatusAnnounced,
	}
	require.NoError(t, db.Create(trip).Error)
	return trip
}

func TestReserveCapacityDecrementsAtomically(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	trip := seedTrip(t, db, 3, 2)

	ok, err := repo.ReserveCapacity(ctx, trip.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := repo.FindByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AvailableCapacity)
}

func TestReserveCapacityRefusesWhenInsufficient(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	trip := seedTrip(t, db, 3, 1)

	ok, err := repo.ReserveCapacity(ctx, trip.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AvailableCapacity, "counter must not go negative")
}

func TestReleaseCapacityClampsAtCapacity(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	trip := seedTrip(t, db, 3, 2)

	require.NoError(t, repo.ReleaseCapacity(ctx, trip.ID, 5))

	stored, err := repo.FindByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.AvailableCapacity)
}

func TestReleaseCapacityAtFullIsNoop(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	trip := seedTrip(t, db, 3, 3)
	before, err := repo.FindByID(ctx, trip.ID)
	require.NoError(t, err)

	require.NoError(t, repo.ReleaseCapacity(ctx, trip.ID, 1))

	after, err := repo.FindByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.AvailableCapacity)
	assert.Equal(t, before.UpdatedAt.UTC(), after.UpdatedAt.UTC(), "untouched rows keep updated_at")
}

func TestUpdateStatusBumpsUpdatedAt(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	trip := seedTrip(t, db, 2, 2)
	before := trip.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.UpdateStatus(ctx, trip.ID, enums.TripStatusTraveling))

	stored, err := repo.FindByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TripStatusTraveling, stored.Status)
	assert.True(t, stored.UpdatedAt.After(before))
}

func TestListByOwnerPaginates(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		trip := &models.Trip{
			ID:      uuid.New(),
			OwnerID: ownerID,
			Destination: types.Destination{
				Name:        "Stop",
				Coordinates: types.Coordinates{Lat: 0, Lng: 0},
			},
			DepartureTime:       time.Now().Add(time.Hour),
			EstimatedReturnTime: time.Now().Add(2 * time.Hour),
			Capacity:            1,
			AvailableCapacity:   1,
			Status:              enums.TripStatusAnnounced,
			CreatedAt:           base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(trip).Error)
	}

	first, err := repo.ListByOwner(ctx, ownerID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Trips, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListByOwner(ctx, ownerID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Trips, 1)
	assert.Empty(t, second.NextCursor)
}

func TestFindAnnouncedDepartedBefore(t *testing.T) {
	db := setupTripsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	stale := seedTrip(t, db, 2, 2)
	require.NoError(t, db.Model(&models.Trip{}).
		Where("id = ?", stale.ID).
		Update("departure_time", time.Now().Add(-48*time.Hour)).Error)

	seedTrip(t, db, 2, 2)

	found, err := repo.FindAnnouncedDepartedBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
}
