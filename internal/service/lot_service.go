package service

import (
	"fmt"
	"strings"

	"parkease/internal/db"
	"parkease/internal/entities"
	apperrors "parkease/internal/errors"
)

// LotStore is the persistence surface the lot service needs.
type LotStore interface {
	CreateLot(lot *db.ParkingLot) error
	GetLot(id int) (*db.ParkingLot, error)
	ListLots(onlyActive bool) ([]db.ParkingLot, error)
	UpdateLotInfo(lot *db.ParkingLot) error
	MaxSpotIndex(lotID int) (int, error)
	GrowLot(lotID int, spots []db.ParkingSpot, newCapacity int) error
	ShrinkLot(lotID, removeCount, newCapacity int) error
	DeleteLot(lotID int) error
	CountSpots(lotID int, status db.SpotStatus) (int, error)
	SpotsWithReservations(lotID int) ([]entities.SpotDetail, error)
}

type LotService struct {
	store LotStore
}

func NewLotService(store LotStore) *LotService {
	return &LotService{store: store}
}

type CreateLotInput struct {
	Name     string
	Price    float64
	Capacity int
	Address  string
	Pincode  string
	Contact  string
}

// CreateLot creates the lot and its initial spots, labeled
// PREFIX-lotID-NNN with a sequential index.
func (s *LotService) CreateLot(in CreateLotInput) (*db.ParkingLot, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.Validation("lot name is required")
	}
	if in.Price <= 0 {
		return nil, apperrors.Validation("price must be positive")
	}
	if in.Capacity <= 0 {
		return nil, apperrors.Validation("capacity must be positive")
	}

	lot := &db.ParkingLot{
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		Capacity: in.Capacity,
		Address:  in.Address,
		Pincode:  in.Pincode,
		Contact:  in.Contact,
		IsActive: true,
	}
	if err := s.store.CreateLot(lot); err != nil {
		return nil, err
	}

	spots := buildSpots(lot, 1, in.Capacity)
	if err := s.store.GrowLot(lot.ID, spots, in.Capacity); err != nil {
		return nil, fmt.Errorf("lot %d created but spots failed: %w", lot.ID, err)
	}
	return lot, nil
}

func (s *LotService) GetLot(id int) (*db.ParkingLot, error) {
	return s.store.GetLot(id)
}

func (s *LotService) ListLots(onlyActive bool) ([]db.ParkingLot, error) {
	return s.store.ListLots(onlyActive)
}

type UpdateLotInput struct {
	Name     *string
	Price    *float64
	Capacity *int
	Address  *string
	IsActive *bool
}

// UpdateLot applies the provided fields. A capacity change goes through
// ResizeLot so the occupied-spot check holds, and runs before the field
// edits are persisted: a rejected resize leaves the lot entirely untouched.
func (s *LotService) UpdateLot(lotID int, in UpdateLotInput) (*db.ParkingLot, error) {
	lot, err := s.store.GetLot(lotID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperrors.Validation("lot name is required")
		}
		lot.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, apperrors.Validation("price must be positive")
		}
		lot.Price = *in.Price
	}
	if in.Address != nil {
		lot.Address = *in.Address
	}
	if in.IsActive != nil {
		lot.IsActive = *in.IsActive
	}

	if in.Capacity != nil && *in.Capacity != lot.Capacity {
		if err := s.ResizeLot(lot, *in.Capacity); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateLotInfo(lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// ResizeLot grows or shrinks the lot's spot set. Growth continues the label
// sequence from the highest index in use, so labels never collide after a
// resize. Shrinking removes the highest-indexed spots and fails with a
// ConflictError, leaving the lot unchanged, if any of them is occupied.
func (s *LotService) ResizeLot(lot *db.ParkingLot, newCapacity int) error {
	if newCapacity <= 0 {
		return apperrors.Validation("capacity must be positive")
	}
	if newCapacity == lot.Capacity {
		return nil
	}

	if newCapacity > lot.Capacity {
		maxIndex, err := s.store.MaxSpotIndex(lot.ID)
		if err != nil {
			return err
		}
		spots := buildSpots(lot, maxIndex+1, maxIndex+newCapacity-lot.Capacity)
		if err := s.store.GrowLot(lot.ID, spots, newCapacity); err != nil {
			return err
		}
	} else {
		if err := s.store.ShrinkLot(lot.ID, lot.Capacity-newCapacity, newCapacity); err != nil {
			return err
		}
	}
	lot.Capacity = newCapacity
	return nil
}

func (s *LotService) DeleteLot(lotID int) error {
	if _, err := s.store.GetLot(lotID); err != nil {
		return err
	}
	return s.store.DeleteLot(lotID)
}

func (s *LotService) AvailableCount(lotID int) (int, error) {
	return s.store.CountSpots(lotID, db.SpotAvailable)
}

func (s *LotService) OccupiedCount(lotID int) (int, error) {
	return s.store.CountSpots(lotID, db.SpotOccupied)
}

func (s *LotService) SpotsWithReservations(lotID int) ([]entities.SpotDetail, error) {
	if _, err := s.store.GetLot(lotID); err != nil {
		return nil, err
	}
	return s.store.SpotsWithReservations(lotID)
}

// OccupancySummary aggregates availability across all lots, with per-lot
// utilization percentages.
func (s *LotService) OccupancySummary() (*entities.OccupancySummary, error) {
	lots, err := s.store.ListLots(false)
	if err != nil {
		return nil, err
	}

	summary := &entities.OccupancySummary{}
	for _, lot := range lots {
		available, err := s.store.CountSpots(lot.ID, db.SpotAvailable)
		if err != nil {
			return nil, err
		}
		occupied, err := s.store.CountSpots(lot.ID, db.SpotOccupied)
		if err != nil {
			return nil, err
		}
		summary.Available += available
		summary.Occupied += occupied

		total := available + occupied
		var pct float64
		if total > 0 {
			pct = roundCurrency(float64(occupied) / float64(total) * 100)
		}
		summary.Lots = append(summary.Lots, entities.LotUtilization{
			LotID:          lot.ID,
			Name:           lot.Name,
			TotalSpots:     total,
			OccupiedSpots:  occupied,
			UtilizationPct: pct,
		})
	}
	return summary, nil
}

func buildSpots(lot *db.ParkingLot, firstIndex, lastIndex int) []db.ParkingSpot {
	var spots []db.ParkingSpot
	for i := firstIndex; i <= lastIndex; i++ {
		spots = append(spots, db.ParkingSpot{
			LotID:     lot.ID,
			Label:     SpotLabel(lot.Name, lot.ID, i),
			SpotIndex: i,
			Status:    db.SpotAvailable,
			SpotType:  "standard",
		})
	}
	return spots
}

// SpotLabel derives the human-readable label for a spot: the first three
// letters of the lot name, the lot id, and the zero-padded sequential index.
func SpotLabel(lotName string, lotID, index int) string {
	prefix := strings.ToUpper(strings.TrimSpace(lotName))
	prefix = strings.ReplaceAll(prefix, " ", "")
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s-%d-%03d", prefix, lotID, index)
}
