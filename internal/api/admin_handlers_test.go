package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkease/internal/db"
	"parkease/internal/entities"
	"parkease/internal/service"
)

// countFailStore accepts writes but fails every spot count.
type countFailStore struct{}

func (s *countFailStore) CreateLot(lot *db.ParkingLot) error { lot.ID = 1; return nil }
func (s *countFailStore) GetLot(id int) (*db.ParkingLot, error) {
	return &db.ParkingLot{ID: id, Name: "Central Garage", Price: 20, Capacity: 2, IsActive: true}, nil
}
func (s *countFailStore) ListLots(onlyActive bool) ([]db.ParkingLot, error) { return nil, nil }
func (s *countFailStore) UpdateLotInfo(lot *db.ParkingLot) error            { return nil }
func (s *countFailStore) MaxSpotIndex(lotID int) (int, error)               { return 0, nil }
func (s *countFailStore) GrowLot(lotID int, spots []db.ParkingSpot, newCapacity int) error {
	return nil
}
func (s *countFailStore) ShrinkLot(lotID, removeCount, newCapacity int) error { return nil }
func (s *countFailStore) DeleteLot(lotID int) error                           { return nil }
func (s *countFailStore) CountSpots(lotID int, status db.SpotStatus) (int, error) {
	return 0, errors.New("count query failed")
}
func (s *countFailStore) SpotsWithReservations(lotID int) ([]entities.SpotDetail, error) {
	return nil, nil
}

func TestCreateLotSurfacesCountFailure(t *testing.T) {
	h := &AdminHandler{Lots: service.NewLotService(&countFailStore{})}

	body := `{"name":"Central Garage","price":20,"capacity":2,"address":"12 Main St","pincode":"560001","contact":"5550001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/lots", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateLot(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
