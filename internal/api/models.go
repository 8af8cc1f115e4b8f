package api

// Auth
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Lots
type CreateLotRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Capacity int     `json:"capacity"`
	Address  string  `json:"address"`
	Pincode  string  `json:"pincode"`
	Contact  string  `json:"contact"`
}
type UpdateLotRequest struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Capacity *int     `json:"capacity,omitempty"`
	Address  *string  `json:"address,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}
type LotResponse struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Capacity  int     `json:"capacity"`
	Address   string  `json:"address"`
	Pincode   string  `json:"pincode"`
	Contact   string  `json:"contact"`
	IsActive  bool    `json:"is_active"`
	Available int     `json:"available"`
	Occupied  int     `json:"occupied"`
}

// Reservations
type ReserveRequest struct {
	LotID         int    `json:"lot_id"`
	VehicleNumber string `json:"vehicle_number"`
	ParkingTime   string `json:"parking_time"`
}
type ReserveResponse struct {
	ReservationID int     `json:"reservation_id"`
	SpotID        int     `json:"spot_id"`
	CostPerHour   float64 `json:"cost_per_hour"`
	Message       string  `json:"message"`
}
type PaymentResponse struct {
	PaymentID     int     `json:"payment_id"`
	ReservationID int     `json:"reservation_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
}
