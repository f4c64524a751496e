// Package queue defines message payloads exchanged over the message broker.
package queue

// Lifecycle event names carried in ReservationEvent.Event.
const (
	EventReservationRequested = "reservation.requested"
	EventReservationUpdated   = "reservation.updated"
	EventReservationApproved  = "reservation.approved"
	EventReservationRejected  = "reservation.rejected"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published on every reservation lifecycle
// transition. It contains enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary
// database.
type ReservationEvent struct {
	Event         string `json:"event"`
	ReservationID uint64 `json:"reservation_id"`
	RoomID        uint64 `json:"room_id"`
	RoomName      string `json:"room_name"`
	RequesterID   uint64 `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	TotalPrice    string `json:"total_price"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}
