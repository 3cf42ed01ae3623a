package entity

type Restaurant struct {
	ID          int64  `json:"restaurant_id" db:"id" yaml:"-"`
	Name        string `json:"restaurant_name" db:"name" yaml:"name"`
	Address     string `json:"restaurant_location" db:"address" yaml:"address"`
	Description string `json:"restaurant_description" db:"restaurant_description" yaml:"description"`
	DailyLimit  int    `json:"daily_limit" db:"daily_limit" yaml:"daily_limit"`
}

// Availability is the booked load of a restaurant for one calendar date.
// Limit and Reserved are both counted in guests, not tables.
type Availability struct {
	Limit    int `json:"limit" db:"daily_limit"`
	Reserved int `json:"reserved" db:"reserved"`
}

// Remaining returns the guests that can still be seated.
func (a Availability) Remaining() int {
	if a.Reserved >= a.Limit {
		return 0
	}
	return a.Limit - a.Reserved
}

/*
MariaDB schema:

CREATE TABLE restaurants (
	id INT NOT NULL AUTO_INCREMENT,
	name VARCHAR(255) NOT NULL,
	address VARCHAR(255) NOT NULL,
	restaurant_description TEXT,
	daily_limit INT NOT NULL DEFAULT 0,
	PRIMARY KEY (id)
);
*/
