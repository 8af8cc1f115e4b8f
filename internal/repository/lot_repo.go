package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"parkease/internal/db"
	"parkease/internal/entities"
	apperrors "parkease/internal/errors"
)

type LotRepository struct {
	DB *sql.DB
}

func NewLotRepository(database *sql.DB) *LotRepository {
	return &LotRepository{DB: database}
}

func (r *LotRepository) CreateLot(lot *db.ParkingLot) error {
	err := r.DB.QueryRow(
		`INSERT INTO parking_lots (name, price, capacity, address, pincode, contact, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		lot.Name, lot.Price, lot.Capacity, lot.Address, lot.Pincode, lot.Contact, lot.IsActive,
	).Scan(&lot.ID)
	if err != nil {
		return fmt.Errorf("error creating lot: %w", err)
	}
	return nil
}

func (r *LotRepository) GetLot(id int) (*db.ParkingLot, error) {
	var lot db.ParkingLot
	err := r.DB.QueryRow(
		`SELECT id, name, price, capacity, address, pincode, contact, is_active
		 FROM parking_lots WHERE id = $1`,
		id,
	).Scan(&lot.ID, &lot.Name, &lot.Price, &lot.Capacity, &lot.Address, &lot.Pincode, &lot.Contact, &lot.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("parking lot %d not found", id))
		}
		return nil, fmt.Errorf("error querying lot: %w", err)
	}
	return &lot, nil
}

func (r *LotRepository) ListLots(onlyActive bool) ([]db.ParkingLot, error) {
	query := `SELECT id, name, price, capacity, address, pincode, contact, is_active FROM parking_lots`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error listing lots: %w", err)
	}
	defer rows.Close()

	var lots []db.ParkingLot
	for rows.Next() {
		var lot db.ParkingLot
		if err := rows.Scan(&lot.ID, &lot.Name, &lot.Price, &lot.Capacity, &lot.Address, &lot.Pincode, &lot.Contact, &lot.IsActive); err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

func (r *LotRepository) UpdateLotInfo(lot *db.ParkingLot) error {
	_, err := r.DB.Exec(
		`UPDATE parking_lots SET name = $1, price = $2, address = $3, pincode = $4, contact = $5, is_active = $6
		 WHERE id = $7`,
		lot.Name, lot.Price, lot.Address, lot.Pincode, lot.Contact, lot.IsActive, lot.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating lot: %w", err)
	}
	return nil
}

// MaxSpotIndex returns the highest spot index currently in use for the lot,
// zero when the lot has no spots.
func (r *LotRepository) MaxSpotIndex(lotID int) (int, error) {
	var max int
	err := r.DB.QueryRow(
		`SELECT COALESCE(MAX(spot_index), 0) FROM parking_spots WHERE lot_id = $1`,
		lotID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("error querying max spot index: %w", err)
	}
	return max, nil
}

// GrowLot appends the given spots and sets the new capacity, atomically.
func (r *LotRepository) GrowLot(lotID int, spots []db.ParkingSpot, newCapacity int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, spot := range spots {
		_, err := tx.Exec(
			`INSERT INTO parking_spots (lot_id, label, spot_index, status, spot_type)
			 VALUES ($1, $2, $3, $4, $5)`,
			lotID, spot.Label, spot.SpotIndex, spot.Status, spot.SpotType,
		)
		if err != nil {
			return fmt.Errorf("error inserting spot %s: %w", spot.Label, err)
		}
	}
	if _, err := tx.Exec(`UPDATE parking_lots SET capacity = $1 WHERE id = $2`, newCapacity, lotID); err != nil {
		return fmt.Errorf("error updating lot capacity: %w", err)
	}
	return tx.Commit()
}

// ShrinkLot removes the removeCount highest-indexed spots of the lot and sets
// the new capacity. Fails with a ConflictError, changing nothing, if any spot
// selected for removal is occupied.
func (r *LotRepository) ShrinkLot(lotID, removeCount, newCapacity int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.Query(
		`SELECT id, status FROM parking_spots
		 WHERE lot_id = $1
		 ORDER BY spot_index DESC
		 LIMIT $2
		 FOR UPDATE`,
		lotID, removeCount,
	)
	if err != nil {
		return fmt.Errorf("error selecting spots to remove: %w", err)
	}

	var ids []int
	for rows.Next() {
		var id int
		var status db.SpotStatus
		if err := rows.Scan(&id, &status); err != nil {
			rows.Close()
			return err
		}
		if status == db.SpotOccupied {
			rows.Close()
			return apperrors.Conflict("cannot reduce capacity: some spots are occupied")
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM parking_spots WHERE id = $1`, id); err != nil {
			return fmt.Errorf("error deleting spot %d: %w", id, err)
		}
	}
	if _, err := tx.Exec(`UPDATE parking_lots SET capacity = $1 WHERE id = $2`, newCapacity, lotID); err != nil {
		return fmt.Errorf("error updating lot capacity: %w", err)
	}
	return tx.Commit()
}

// DeleteLot removes a lot and everything under it: payments, reservations,
// spots, then the lot itself, in one transaction. Fails with a ConflictError
// while any spot is occupied.
func (r *LotRepository) DeleteLot(lotID int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var occupied int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM parking_spots WHERE lot_id = $1 AND status = $2`,
		lotID, db.SpotOccupied,
	).Scan(&occupied)
	if err != nil {
		return fmt.Errorf("error counting occupied spots: %w", err)
	}
	if occupied > 0 {
		return apperrors.Conflict("cannot delete lot with occupied spots")
	}

	if _, err := tx.Exec(
		`DELETE FROM payments WHERE reservation_id IN (
			SELECT r.id FROM reservations r
			JOIN parking_spots s ON s.id = r.spot_id
			WHERE s.lot_id = $1
		)`, lotID); err != nil {
		return fmt.Errorf("error deleting payments for lot: %w", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM reservations WHERE spot_id IN (
			SELECT id FROM parking_spots WHERE lot_id = $1
		)`, lotID); err != nil {
		return fmt.Errorf("error deleting reservations for lot: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM parking_spots WHERE lot_id = $1`, lotID); err != nil {
		return fmt.Errorf("error deleting spots for lot: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM parking_lots WHERE id = $1`, lotID); err != nil {
		return fmt.Errorf("error deleting lot: %w", err)
	}
	return tx.Commit()
}

func (r *LotRepository) CountSpots(lotID int, status db.SpotStatus) (int, error) {
	var count int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM parking_spots WHERE lot_id = $1 AND status = $2`,
		lotID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting spots: %w", err)
	}
	return count, nil
}

// SpotsWithReservations lists the lot's spots in index order, each occupied
// spot carrying its pending reservation and owner.
func (r *LotRepository) SpotsWithReservations(lotID int) ([]entities.SpotDetail, error) {
	rows, err := r.DB.Query(
		`SELECT
			s.id, s.lot_id, s.label, s.spot_index, s.status, s.spot_type,
			r.id, r.user_id, r.reservation_timestamp, r.parking_timestamp, r.cost_per_hour, r.vehicle_number,
			u.username
		 FROM parking_spots s
		 LEFT JOIN reservations r ON r.spot_id = s.id AND r.payment_status = $2
		 LEFT JOIN users u ON u.id = r.user_id
		 WHERE s.lot_id = $1
		 ORDER BY s.spot_index`,
		lotID, db.PaymentPending,
	)
	if err != nil {
		return nil, fmt.Errorf("error listing spots: %w", err)
	}
	defer rows.Close()

	var details []entities.SpotDetail
	for rows.Next() {
		var d entities.SpotDetail
		var resID, resUserID sql.NullInt64
		var resCreated, resParking sql.NullTime
		var resRate sql.NullFloat64
		var resVehicle, username sql.NullString

		err := rows.Scan(
			&d.Spot.ID, &d.Spot.LotID, &d.Spot.Label, &d.Spot.SpotIndex, &d.Spot.Status, &d.Spot.SpotType,
			&resID, &resUserID, &resCreated, &resParking, &resRate, &resVehicle,
			&username,
		)
		if err != nil {
			return nil, err
		}
		if resID.Valid {
			d.Reservation = &db.Reservation{
				ID:                   int(resID.Int64),
				SpotID:               d.Spot.ID,
				UserID:               int(resUserID.Int64),
				ReservationTimestamp: resCreated.Time,
				ParkingTimestamp:     resParking.Time,
				CostPerHour:          resRate.Float64,
				VehicleNumber:        resVehicle.String,
				PaymentStatus:        db.PaymentPending,
			}
			d.ReservedBy = username.String
			d.VehicleNumber = resVehicle.String
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
