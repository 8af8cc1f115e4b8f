package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"parkease/internal/db"
	"parkease/internal/repository"
	"parkease/internal/service"
)

type AdminHandler struct {
	Lots         *service.LotService
	Reservations *service.ReservationService
	Sweeper      *service.SweeperService
	Users        *repository.UserRepository
}

func NewAdminHandler(lots *service.LotService, reservations *service.ReservationService, sweeper *service.SweeperService, users *repository.UserRepository) *AdminHandler {
	return &AdminHandler{Lots: lots, Reservations: reservations, Sweeper: sweeper, Users: users}
}

func (h *AdminHandler) CreateLot(w http.ResponseWriter, r *http.Request) {
	var req CreateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lot, err := h.Lots.CreateLot(service.CreateLotInput{
		Name:     req.Name,
		Price:    req.Price,
		Capacity: req.Capacity,
		Address:  req.Address,
		Pincode:  req.Pincode,
		Contact:  req.Contact,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := lotResponse(h, lot)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AdminHandler) UpdateLot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid lot ID", http.StatusBadRequest)
		return
	}
	var req UpdateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lot, err := h.Lots.UpdateLot(id, service.UpdateLotInput{
		Name:     req.Name,
		Price:    req.Price,
		Capacity: req.Capacity,
		Address:  req.Address,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := lotResponse(h, lot)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) DeleteLot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid lot ID", http.StatusBadRequest)
		return
	}
	if err := h.Lots.DeleteLot(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Parking lot deleted"})
}

func (h *AdminHandler) ListSpots(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid lot ID", http.StatusBadRequest)
		return
	}
	spots, err := h.Lots.SpotsWithReservations(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spots)
}

func (h *AdminHandler) LotHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid lot ID", http.StatusBadRequest)
		return
	}
	history, err := h.Reservations.HistoryByLot(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// ListUsers shows every regular user with their active reservation, if any.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListByRole(db.RoleUser)
	if err != nil {
		writeError(w, err)
		return
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	overview, err := h.Reservations.UsersOverview(users)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *AdminHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	history, err := h.Reservations.HistoryByUser(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// Summary is the admin dashboard feed: overall and per-lot occupancy. Stale
// reservations are swept first, as on the user dashboard.
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if closed, err := h.Sweeper.Sweep(); err != nil {
		log.Printf("Opportunistic sweep failed: %v", err)
	} else if closed > 0 {
		log.Printf("Opportunistic sweep closed %d reservation(s)", closed)
	}

	summary, err := h.Lots.OccupancySummary()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func lotResponse(h *AdminHandler, lot *db.ParkingLot) (LotResponse, error) {
	available, err := h.Lots.AvailableCount(lot.ID)
	if err != nil {
		return LotResponse{}, err
	}
	occupied, err := h.Lots.OccupiedCount(lot.ID)
	if err != nil {
		return LotResponse{}, err
	}
	return LotResponse{
		ID: lot.ID, Name: lot.Name, Price: lot.Price, Capacity: lot.Capacity,
		Address: lot.Address, Pincode: lot.Pincode, Contact: lot.Contact,
		IsActive: lot.IsActive, Available: available, Occupied: occupied,
	}, nil
}
