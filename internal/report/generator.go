// Package report renders the reservation history of a room into the
// rows served over the RPC endpoint.
package report

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// maxRows caps how many rows a single report may return regardless of
// the requested limit.
const maxRows = 500

// Params are the inputs accepted by Generate.  Sort is matched
// case-insensitively against RECENT, OLDEST and LONGEST_DURATION;
// anything else falls back to RECENT.  Limit is clamped to [0, maxRows]
// where 0 means "all rows up to the cap".
type Params struct {
	RoomID uint64 `json:"room_id"`
	Sort   string `json:"sort"`
	Limit  int    `json:"limit"`
}

// Row is one formatted report entry.  Price is a two-decimal string
// and duration a trimmed hour figure such as "1.0h" or "2.5h".
type Row struct {
	ReservationID  uint64 `json:"reservation_id"`
	RequesterName  string `json:"requester_name"`
	RequesterCPF   string `json:"requester_cpf"`
	RequesterPhone string `json:"requester_phone"`
	StartsAt       string `json:"starts_at"`
	EndsAt         string `json:"ends_at"`
	Duration       string `json:"duration"`
	Status         string `json:"status"`
	TotalPrice     string `json:"total_price"`
}

// Report is the full RPC response payload.
type Report struct {
	RoomID      uint64 `json:"room_id"`
	RoomName    string `json:"room_name"`
	Sort        string `json:"sort"`
	Count       int    `json:"count"`
	GeneratedAt string `json:"generated_at"`
	Rows        []Row  `json:"rows"`
}

// Generator builds reservation reports from the reporting projection.
type Generator struct {
	Reports *repository.ReportRepo
	Rooms   *repository.RoomRepo
}

// NewGenerator returns a Generator over the given repositories.
func NewGenerator(reports *repository.ReportRepo, rooms *repository.RoomRepo) *Generator {
	return &Generator{Reports: reports, Rooms: rooms}
}

// NormalizeSort maps a client-supplied sort string onto a supported
// sort mode, defaulting to RECENT.
func NormalizeSort(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case repository.SortOldest:
		return repository.SortOldest
	case repository.SortLongestDuration:
		return repository.SortLongestDuration
	default:
		return repository.SortRecent
	}
}

// ClampLimit bounds a requested row limit to [0, maxRows].
func ClampLimit(limit int) int {
	if limit < 0 {
		return 0
	}
	if limit > maxRows {
		return maxRows
	}
	return limit
}

// FormatRow turns a raw projection row into its presentation form.
func FormatRow(r repository.ReportRow) Row {
	return Row{
		ReservationID:  r.ID,
		RequesterName:  r.RequesterName,
		RequesterCPF:   r.RequesterCPF,
		RequesterPhone: r.RequesterPhone,
		StartsAt:       r.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:         r.EndsAt.UTC().Format(time.RFC3339),
		Duration:       model.FormatDurationHours(model.DurationHours(r.StartsAt, r.EndsAt)),
		Status:         r.Status,
		TotalPrice:     model.FormatPrice(r.TotalPrice),
	}
}

// Generate produces the report for a room.  It returns
// repository.ErrRoomNotFound when the room does not exist.
func (g *Generator) Generate(ctx context.Context, p Params) (*Report, error) {
	rm, err := g.Rooms.GetByID(ctx, p.RoomID)
	if err != nil {
		return nil, err
	}
	sort := NormalizeSort(p.Sort)
	limit := ClampLimit(p.Limit)
	if limit == 0 {
		limit = maxRows
	}

	raw, err := g.Reports.ListByRoom(ctx, rm.ID, limit, sort)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, FormatRow(r))
	}
	return &Report{
		RoomID:      rm.ID,
		RoomName:    rm.Name,
		Sort:        sort,
		Count:       len(rows),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Rows:        rows,
	}, nil
}
