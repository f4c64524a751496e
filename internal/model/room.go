package model

import "time"

// Room represents a rentable room listed by one of the users.
// A room belongs to exactly one owner, assigned at creation and
// never transferred.  Pricing is per hour; the address is stored
// denormalized on the row.  This struct corresponds to a row in
// the `rooms` table.
//
// Fields:
//  ID           – primary key identifier.
//  OwnerID      – user ID of the room owner (set once at creation).
//  Name         – human-friendly name of the room.
//  Description  – free-form description.
//  Capacity     – maximum number of people, always positive.
//  Street       – street name of the address.
//  Number       – street number (string, may contain suffixes).
//  District     – neighbourhood.
//  City         – city name.
//  State        – two-letter state code.
//  PostalCode   – postal code.
//  PricePerHour – hourly rental price, always positive.
//  IsAvailable  – whether the room is open for new reservations.
//  CreatedAt    – timestamp when the room was created.
//  UpdatedAt    – timestamp of last update.
type Room struct {
	ID           uint64    // rooms.id
	OwnerID      uint64    // rooms.owner_id
	Name         string    // rooms.name
	Description  string    // rooms.description
	Capacity     uint32    // rooms.capacity
	Street       string    // rooms.street
	Number       string    // rooms.number
	District     string    // rooms.district
	City         string    // rooms.city
	State        string    // rooms.state
	PostalCode   string    // rooms.postal_code
	PricePerHour float64   // rooms.price_per_hour (DECIMAL(10,2))
	IsAvailable  bool      // rooms.is_available
	CreatedAt    time.Time // rooms.created_at
	UpdatedAt    time.Time // rooms.updated_at
}
