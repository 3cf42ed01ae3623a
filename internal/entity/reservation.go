package entity

import "time"

type Reservation struct {
	ID           int64  `json:"reservation_id" db:"reservation_id"`
	UserID       int64  `json:"user_id" db:"user_id"`
	RestaurantID int64  `json:"restaurant_id" db:"restaurant_id"`
	Date         string `json:"reservation_date" db:"reservation_date"` // YYYY-MM-DD
	Time         string `json:"reservation_time" db:"reservation_time"` // HH:MM:SS
	PeopleCount  int    `json:"people_count" db:"people_count"`
}

// ReservationDetail is a reservation joined with the restaurant it belongs to.
type ReservationDetail struct {
	ID                    int64  `json:"reservation_id" db:"reservation_id"`
	RestaurantID          int64  `json:"restaurant_id" db:"restaurant_id"`
	RestaurantName        string `json:"restaurant_name" db:"restaurant_name"`
	RestaurantLocation    string `json:"restaurant_location" db:"restaurant_location"`
	RestaurantDescription string `json:"restaurant_description" db:"restaurant_description"`
	Date                  string `json:"reservation_date" db:"reservation_date"`
	Time                  string `json:"reservation_time" db:"reservation_time"`
	PeopleCount           int    `json:"people_count" db:"people_count"`
}

// ReservationEvent is published whenever a reservation is created, updated or cancelled.
type ReservationEvent struct {
	Type          string    `json:"type"` // created, updated, cancelled
	ReservationID int64     `json:"reservation_id"`
	UserID        int64     `json:"user_id"`
	RestaurantID  int64     `json:"restaurant_id"`
	Date          string    `json:"reservation_date"`
	Time          string    `json:"reservation_time,omitempty"`
	PeopleCount   int       `json:"people_count,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

/*
MariaDB schema:

CREATE TABLE reservations (
	reservation_id INT NOT NULL AUTO_INCREMENT,
	user_id INT NOT NULL,
	restaurant_id INT NOT NULL,
	reservation_date DATE NOT NULL,
	reservation_time TIME NOT NULL,
	people_count INT NOT NULL,
	PRIMARY KEY (reservation_id),
	UNIQUE KEY uq_reservations_user_restaurant_date (user_id, restaurant_id, reservation_date),
	KEY fk_restaurant (restaurant_id),
	CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users(id),
	CONSTRAINT fk_reservations_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants(id)
);
*/
