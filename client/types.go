package client

// Restaurant is one entry of GET /restaurants.
type Restaurant struct {
	ID          int64  `json:"restaurant_id"`
	Name        string `json:"restaurant_name"`
	Address     string `json:"restaurant_location"`
	Description string `json:"restaurant_description"`
	DailyLimit  int    `json:"daily_limit"`
}

// Availability is the booked load of a restaurant on one date, counted in guests.
type Availability struct {
	Limit    int `json:"limit"`
	Reserved int `json:"reserved"`
}

// Remaining returns the guests that can still be seated.
func (a Availability) Remaining() int {
	if a.Reserved >= a.Limit {
		return 0
	}
	return a.Limit - a.Reserved
}

type Reservation struct {
	ID           int64  `json:"reservation_id"`
	UserID       int64  `json:"user_id"`
	RestaurantID int64  `json:"restaurant_id"`
	Date         string `json:"reservation_date"`
	Time         string `json:"reservation_time"`
	PeopleCount  int    `json:"people_count"`
}

// ReservationDetail is a reservation as listed by GET /reservations/user.
type ReservationDetail struct {
	ID                    int64  `json:"reservation_id"`
	RestaurantID          int64  `json:"restaurant_id"`
	RestaurantName        string `json:"restaurant_name"`
	RestaurantLocation    string `json:"restaurant_location"`
	RestaurantDescription string `json:"restaurant_description"`
	Date                  string `json:"reservation_date"`
	Time                  string `json:"reservation_time"`
	PeopleCount           int    `json:"people_count"`
}
