package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Room struct {
	bun.BaseModel `bun:"table:rooms"`

	RoomID        string    `bun:"room_id,pk" json:"room_id"`
	Title         string    `bun:"title,notnull" json:"title"`
	Description   string    `bun:"description,nullzero" json:"description,omitempty"`
	PricePerNight float64   `bun:"price_per_night,notnull" json:"price_per_night"`
	Capacity      int       `bun:"capacity,notnull" json:"capacity"`
	Available     bool      `bun:"available,notnull" json:"available"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type RoomRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	PricePerNight float64 `json:"price_per_night"`
	Capacity      int     `json:"capacity"`
	Available     *bool   `json:"available,omitempty"`
}
