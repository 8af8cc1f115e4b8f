package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkease/internal/db"
	apperrors "parkease/internal/errors"
)

func newLotFixture(t *testing.T, capacity int) (*LotService, *memStore, *db.ParkingLot) {
	t.Helper()
	store := newMemStore()
	svc := NewLotService(store)
	lot, err := svc.CreateLot(CreateLotInput{
		Name:     "Central Garage",
		Price:    20,
		Capacity: capacity,
		Address:  "12 Main St",
		Pincode:  "560001",
		Contact:  "5550001",
	})
	require.NoError(t, err)
	return svc, store, lot
}

func TestCreateLotBuildsLabeledSpots(t *testing.T) {
	svc, store, lot := newLotFixture(t, 3)

	count, err := svc.AvailableCount(lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	spots, err := store.SpotsWithReservations(lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 3)
	assert.Equal(t, "CEN-1-001", spots[0].Spot.Label)
	assert.Equal(t, "CEN-1-002", spots[1].Spot.Label)
	assert.Equal(t, "CEN-1-003", spots[2].Spot.Label)
	for _, s := range spots {
		assert.Equal(t, db.SpotAvailable, s.Spot.Status)
	}
}

func TestCreateLotValidation(t *testing.T) {
	svc := NewLotService(newMemStore())

	var validation *apperrors.ValidationError

	_, err := svc.CreateLot(CreateLotInput{Name: "", Price: 10, Capacity: 5})
	assert.ErrorAs(t, err, &validation)

	_, err = svc.CreateLot(CreateLotInput{Name: "A", Price: 0, Capacity: 5})
	assert.ErrorAs(t, err, &validation)

	_, err = svc.CreateLot(CreateLotInput{Name: "A", Price: 10, Capacity: 0})
	assert.ErrorAs(t, err, &validation)
}

func TestResizeLotGrowContinuesLabelSequence(t *testing.T) {
	svc, store, lot := newLotFixture(t, 2)

	require.NoError(t, svc.ResizeLot(lot, 4))
	assert.Equal(t, 4, lot.Capacity)

	spots, err := store.SpotsWithReservations(lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 4)
	assert.Equal(t, "CEN-1-003", spots[2].Spot.Label)
	assert.Equal(t, "CEN-1-004", spots[3].Spot.Label)
}

func TestResizeLotShrinkRemovesHighestIndexes(t *testing.T) {
	svc, store, lot := newLotFixture(t, 5)

	require.NoError(t, svc.ResizeLot(lot, 3))
	assert.Equal(t, 3, lot.Capacity)

	spots, err := store.SpotsWithReservations(lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 3)
	assert.Equal(t, 3, spots[len(spots)-1].Spot.SpotIndex)
}

func TestResizeLotShrinkFailsWhileHighSpotOccupied(t *testing.T) {
	svc, store, lot := newLotFixture(t, 5)

	// Occupy spot #4, one of the removal candidates for a 5 -> 3 shrink.
	for _, s := range store.spots {
		if s.SpotIndex == 4 {
			s.Status = db.SpotOccupied
		}
	}

	err := svc.ResizeLot(lot, 3)
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)

	stored, getErr := store.GetLot(lot.ID)
	require.NoError(t, getErr)
	assert.Equal(t, 5, stored.Capacity)

	spots, err := store.SpotsWithReservations(lot.ID)
	require.NoError(t, err)
	assert.Len(t, spots, 5)
}

func TestUpdateLotRejectedShrinkDiscardsFieldEdits(t *testing.T) {
	svc, store, lot := newLotFixture(t, 5)

	for _, s := range store.spots {
		if s.SpotIndex == 4 {
			s.Status = db.SpotOccupied
		}
	}

	name := "Renamed Garage"
	price := 99.0
	capacity := 3
	_, err := svc.UpdateLot(lot.ID, UpdateLotInput{Name: &name, Price: &price, Capacity: &capacity})
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)

	// The rejected resize takes the field edits down with it.
	stored, err := store.GetLot(lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "Central Garage", stored.Name)
	assert.Equal(t, 20.0, stored.Price)
	assert.Equal(t, 5, stored.Capacity)
}

func TestUpdateLotAppliesFieldsWithCleanResize(t *testing.T) {
	svc, store, lot := newLotFixture(t, 2)

	name := "North Deck"
	capacity := 4
	updated, err := svc.UpdateLot(lot.ID, UpdateLotInput{Name: &name, Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, "North Deck", updated.Name)
	assert.Equal(t, 4, updated.Capacity)

	stored, err := store.GetLot(lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "North Deck", stored.Name)
	assert.Equal(t, 4, stored.Capacity)
}

func TestResizeShrunkLotGrowsWithoutLabelCollision(t *testing.T) {
	svc, store, lot := newLotFixture(t, 5)

	require.NoError(t, svc.ResizeLot(lot, 3))
	require.NoError(t, svc.ResizeLot(lot, 5))

	spots, err := store.SpotsWithReservations(lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 5)

	seen := map[string]bool{}
	for _, s := range spots {
		assert.False(t, seen[s.Spot.Label], "duplicate label %s", s.Spot.Label)
		seen[s.Spot.Label] = true
	}
}

func TestDeleteLotFailsWhileOccupied(t *testing.T) {
	svc, store, lot := newLotFixture(t, 2)

	for _, s := range store.spots {
		s.Status = db.SpotOccupied
		break
	}

	err := svc.DeleteLot(lot.ID)
	var conflict *apperrors.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = store.GetLot(lot.ID)
	assert.NoError(t, err)
}

func TestDeleteLotCascades(t *testing.T) {
	svc, store, lot := newLotFixture(t, 2)

	require.NoError(t, svc.DeleteLot(lot.ID))

	_, err := store.GetLot(lot.ID)
	var notFound *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Empty(t, store.lotSpots(lot.ID))
}

func TestOccupancySummary(t *testing.T) {
	svc, store, lot := newLotFixture(t, 4)

	occupiedCount := 0
	for _, s := range store.spots {
		if occupiedCount == 1 {
			break
		}
		s.Status = db.SpotOccupied
		occupiedCount++
	}

	summary, err := svc.OccupancySummary()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Available)
	assert.Equal(t, 1, summary.Occupied)
	require.Len(t, summary.Lots, 1)
	assert.Equal(t, lot.ID, summary.Lots[0].LotID)
	assert.Equal(t, 25.0, summary.Lots[0].UtilizationPct)
}

func TestSpotLabel(t *testing.T) {
	assert.Equal(t, "CEN-7-001", SpotLabel("Central Garage", 7, 1))
	assert.Equal(t, "AB-2-015", SpotLabel("ab", 2, 15))
	assert.Equal(t, "LOT-10-120", SpotLabel("lot park", 10, 120))
}
