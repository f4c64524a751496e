package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Reservation statuses. REQUESTED and APPROVED are the "active"
// statuses: only they occupy a room's timeline. REJECTED, CANCELLED
// and COMPLETED are terminal. COMPLETED is a bookkeeping status and
// is never set through the public API.
const (
	StatusRequested = "REQUESTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// Payment methods accepted on a reservation.
const (
	PaymentPix        = "PIX"
	PaymentCreditCard = "CREDIT_CARD"
	PaymentDebitCard  = "DEBIT_CARD"
	PaymentBankSlip   = "BANK_SLIP"
	PaymentCash       = "CASH"
)

// Reservation records a user's request to rent a room for a
// time range.  The total price is derived from the room's hourly
// price and is never supplied by the client.  This struct
// corresponds to a row in the `reservations` table.
//
// Fields:
//  ID            – primary key identifier.
//  RequesterID   – user who requested the reservation.
//  RoomID        – room being reserved.
//  StartsAt      – beginning of the reserved range (inclusive).
//  EndsAt        – end of the reserved range (exclusive), strictly after StartsAt.
//  TotalPrice    – computed price: hourly price × duration in hours.
//  PaymentMethod – one of the Payment* constants.
//  Status        – one of the Status* constants.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Reservation struct {
	ID            uint64    // reservations.id
	RequesterID   uint64    // reservations.requester_id
	RoomID        uint64    // reservations.room_id
	StartsAt      time.Time // reservations.starts_at
	EndsAt        time.Time // reservations.ends_at
	TotalPrice    float64   // reservations.total_price (DECIMAL(10,2))
	PaymentMethod string    // reservations.payment_method
	Status        string    // reservations.status
	CreatedAt     time.Time // reservations.created_at
	UpdatedAt     time.Time // reservations.updated_at
}

// IsValidPaymentMethod reports whether s names a known payment method.
// Comparison is case-insensitive; callers should normalize with
// NormalizePaymentMethod before persisting.
func IsValidPaymentMethod(s string) bool {
	switch NormalizePaymentMethod(s) {
	case PaymentPix, PaymentCreditCard, PaymentDebitCard, PaymentBankSlip, PaymentCash:
		return true
	}
	return false
}

// NormalizePaymentMethod upper-cases and trims a client supplied
// payment method token.
func NormalizePaymentMethod(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsActiveStatus reports whether a status occupies the room's
// timeline for conflict purposes.
func IsActiveStatus(status string) bool {
	return status == StatusRequested || status == StatusApproved
}

// IsTerminalStatus reports whether no further transitions are
// defined from the given status.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanCancel reports whether a reservation in the given status may be
// cancelled by its requester. Only active reservations can be
// cancelled; terminal statuses cannot.
func CanCancel(status string) bool {
	return IsActiveStatus(status)
}

// CanRespond reports whether the room owner may still apply an
// APPROVE/REJECT action to a reservation in the given status.
// Re-responding to an already approved or rejected reservation is an
// idempotent overwrite; cancelled and completed reservations are
// settled and cannot be reopened.
func CanRespond(status string) bool {
	switch status {
	case StatusRequested, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not conflict: a
// reservation ending at 12:00 and one starting at 12:00 coexist.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DurationHours returns the reservation length in hours, rounded
// half-up to two decimal places.
func DurationHours(start, end time.Time) float64 {
	return Round2(end.Sub(start).Seconds() / 3600.0)
}

// TotalPrice computes the price of renting a room at the given
// hourly rate for the given range: hourly price × duration in
// hours, rounded half-up to two decimal places.
func TotalPrice(pricePerHour float64, start, end time.Time) float64 {
	hours := end.Sub(start).Seconds() / 3600.0
	return Round2(pricePerHour * hours)
}

// Round2 rounds half-up to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatPrice renders a price with exactly two decimals, e.g. "100.00".
func FormatPrice(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}

// FormatDurationHours renders a duration in hours as a short human
// string: two decimals with a trailing zero trimmed, always keeping
// at least one decimal. A one hour span renders as "1.0h", ninety
// minutes as "1.5h", seventy-five minutes as "1.25h".
func FormatDurationHours(hours float64) string {
	s := strconv.FormatFloat(Round2(hours), 'f', 2, 64)
	if strings.HasSuffix(s, "0") && !strings.HasSuffix(s, ".00") {
		s = s[:len(s)-1]
	} else if strings.HasSuffix(s, ".00") {
		s = s[:len(s)-1]
	}
	return s + "h"
}
