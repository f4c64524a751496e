package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name         string
		aStart, aEnd time.Time
		bStart, bEnd time.Time
		expect       bool
	}{
		{"identical ranges", at(10, 0), at(12, 0), at(10, 0), at(12, 0), true},
		{"partial overlap", at(10, 0), at(12, 0), at(11, 0), at(13, 0), true},
		{"contained range", at(10, 0), at(14, 0), at(11, 0), at(12, 0), true},
		{"back to back, a first", at(10, 0), at(12, 0), at(12, 0), at(14, 0), false},
		{"back to back, b first", at(12, 0), at(14, 0), at(10, 0), at(12, 0), false},
		{"disjoint", at(8, 0), at(9, 0), at(12, 0), at(13, 0), false},
		{"one minute overlap", at(10, 0), at(12, 1), at(12, 0), at(14, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// overlap is symmetric
			assert.Equal(t, tt.expect, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestTotalPrice(t *testing.T) {
	tests := []struct {
		name   string
		rate   float64
		start  time.Time
		end    time.Time
		expect float64
	}{
		{"two hours flat rate", 50.0, at(10, 0), at(12, 0), 100.0},
		{"ninety minutes", 50.0, at(10, 0), at(11, 30), 75.0},
		{"fractional rate rounds", 33.33, at(10, 0), at(11, 0), 33.33},
		{"fractional product rounds half up", 10.0, at(10, 0), at(10, 5), 0.83},
		{"fifteen minutes", 100.0, at(10, 0), at(10, 15), 25.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expect, TotalPrice(tt.rate, tt.start, tt.end), 1e-9)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "100.00", FormatPrice(100.0))
	assert.Equal(t, "75.50", FormatPrice(75.5))
	assert.Equal(t, "0.83", FormatPrice(0.833))
}

func TestFormatDurationHours(t *testing.T) {
	tests := []struct {
		hours  float64
		expect string
	}{
		{1.0, "1.0h"},
		{1.5, "1.5h"},
		{1.25, "1.25h"},
		{2.0, "2.0h"},
		{0.5, "0.5h"},
		{10.75, "10.75h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expect, FormatDurationHours(tt.hours), "hours=%v", tt.hours)
	}
}

func TestDurationHours(t *testing.T) {
	assert.InDelta(t, 1.0, DurationHours(at(10, 0), at(11, 0)), 1e-9)
	assert.InDelta(t, 1.5, DurationHours(at(10, 0), at(11, 30)), 1e-9)
	assert.InDelta(t, 0.25, DurationHours(at(10, 0), at(10, 15)), 1e-9)
}

func TestPaymentMethods(t *testing.T) {
	for _, m := range []string{PaymentPix, PaymentCreditCard, PaymentDebitCard, PaymentBankSlip, PaymentCash} {
		assert.True(t, IsValidPaymentMethod(m), m)
	}
	assert.False(t, IsValidPaymentMethod("BARTER"))
	assert.False(t, IsValidPaymentMethod(""))

	assert.Equal(t, PaymentPix, NormalizePaymentMethod(" pix "))
	assert.Equal(t, PaymentCreditCard, NormalizePaymentMethod("credit_card"))
}

func TestStatusMachine(t *testing.T) {
	t.Run("active statuses occupy the timeline", func(t *testing.T) {
		assert.True(t, IsActiveStatus(StatusRequested))
		assert.True(t, IsActiveStatus(StatusApproved))
		assert.False(t, IsActiveStatus(StatusRejected))
		assert.False(t, IsActiveStatus(StatusCancelled))
		assert.False(t, IsActiveStatus(StatusCompleted))
	})

	t.Run("cancel only while active", func(t *testing.T) {
		assert.True(t, CanCancel(StatusRequested))
		assert.True(t, CanCancel(StatusApproved))
		assert.False(t, CanCancel(StatusRejected))
		assert.False(t, CanCancel(StatusCancelled))
		assert.False(t, CanCancel(StatusCompleted))
	})

	t.Run("owner may respond until terminal by requester", func(t *testing.T) {
		assert.True(t, CanRespond(StatusRequested))
		assert.True(t, CanRespond(StatusApproved))
		assert.True(t, CanRespond(StatusRejected))
		assert.False(t, CanRespond(StatusCancelled))
		assert.False(t, CanRespond(StatusCompleted))
	})
}
