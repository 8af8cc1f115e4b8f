package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"parkease/internal/auth"
	"parkease/internal/service"
)

type UserHandler struct {
	Reservations *service.ReservationService
	Lots         *service.LotService
	Sweeper      *service.SweeperService
}

func NewUserHandler(reservations *service.ReservationService, lots *service.LotService, sweeper *service.SweeperService) *UserHandler {
	return &UserHandler{Reservations: reservations, Lots: lots, Sweeper: sweeper}
}

// ListLots is the user dashboard feed: active lots with live availability.
// Stale reservations are swept first so the counts reflect reality.
func (h *UserHandler) ListLots(w http.ResponseWriter, r *http.Request) {
	h.sweep()

	lots, err := h.Lots.ListLots(true)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]LotResponse, 0, len(lots))
	for _, lot := range lots {
		available, err := h.Lots.AvailableCount(lot.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		occupied, err := h.Lots.OccupiedCount(lot.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		resp = append(resp, LotResponse{
			ID: lot.ID, Name: lot.Name, Price: lot.Price, Capacity: lot.Capacity,
			Address: lot.Address, Pincode: lot.Pincode, Contact: lot.Contact,
			IsActive: lot.IsActive, Available: available, Occupied: occupied,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.Reservations.Reserve(actor, req.LotID, req.VehicleNumber, req.ParkingTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ReserveResponse{
		ReservationID: res.ID,
		SpotID:        res.SpotID,
		CostPerHour:   res.CostPerHour,
		Message:       "Spot reserved successfully",
	})
}

func (h *UserHandler) ConfirmOccupancy(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	res, err := h.Reservations.ConfirmOccupancy(actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reservation_id":    res.ID,
		"parking_timestamp": res.ParkingTimestamp,
		"message":           "Occupancy confirmed, billing clock restarted",
	})
}

func (h *UserHandler) Release(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid reservation ID", http.StatusBadRequest)
		return
	}

	pay, err := h.Reservations.Release(actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaymentResponse{
		PaymentID:     pay.ID,
		ReservationID: pay.ReservationID,
		Amount:        pay.Amount,
		Method:        pay.Method,
		Status:        pay.Status,
	})
}

func (h *UserHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	history, err := h.Reservations.HistoryByUser(actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *UserHandler) sweep() {
	closed, err := h.Sweeper.Sweep()
	if err != nil {
		log.Printf("Opportunistic sweep failed: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("Opportunistic sweep closed %d reservation(s)", closed)
	}
}
