package models

import "time"

// MasterGym is the canonical gym a set of source gyms resolve to.
type MasterGym struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	City      *string   `json:"city,omitempty" db:"city"`
	Country   *string   `json:"country,omitempty" db:"country"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Website   *string   `json:"website,omitempty" db:"website"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateMasterGymRequest carries the canonical fields seeded from the gym
// pair being linked.
type CreateMasterGymRequest struct {
	Name    string  `json:"name" validate:"required"`
	City    *string `json:"city,omitempty"`
	Country *string `json:"country,omitempty"`
	Address *string `json:"address,omitempty"`
	Website *string `json:"website,omitempty"`
}
