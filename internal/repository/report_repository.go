package repository

import (
	"context"
	"database/sql"
	"time"
)

// ReportRepo serves the read-only reporting projection over the
// reservations ledger.  It joins requester personal data (name, CPF,
// phone) onto each row; scoping decisions are made by the RPC layer,
// not here.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Report sort modes, mapping to ORDER BY clauses.
const (
	SortRecent          = "RECENT"           // starts_at descending (default)
	SortOldest          = "OLDEST"           // starts_at ascending
	SortLongestDuration = "LONGEST_DURATION" // (ends_at - starts_at) descending
)

// ReportRow is a raw projection row before formatting.  All
// reservation statuses are included: the report is a historical view,
// not an availability view.
type ReportRow struct {
	ID             uint64
	RequesterName  string
	RequesterCPF   string
	RequesterPhone string
	StartsAt       time.Time
	EndsAt         time.Time
	Status         string
	TotalPrice     float64
}

// ListByRoom returns reservation rows for a room ordered by the given
// sort mode and capped at limit (limit <= 0 means no cap).  Unknown
// sort modes fall back to SortRecent, matching the report contract.
func (r *ReportRepo) ListByRoom(ctx context.Context, roomID uint64, limit int, sort string) ([]ReportRow, error) {
	q := `SELECT r.id, u.name, u.cpf, u.phone, r.starts_at, r.ends_at, r.status, r.total_price
	      FROM reservations r
	      JOIN users u ON u.id = r.requester_id
	      WHERE r.room_id = ?`
	switch sort {
	case SortOldest:
		q += ` ORDER BY r.starts_at ASC`
	case SortLongestDuration:
		q += ` ORDER BY TIMESTAMPDIFF(SECOND, r.starts_at, r.ends_at) DESC`
	default:
		q += ` ORDER BY r.starts_at DESC`
	}
	args := []interface{}{roomID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ReportRow, 0)
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(
			&row.ID, &row.RequesterName, &row.RequesterCPF, &row.RequesterPhone,
			&row.StartsAt, &row.EndsAt, &row.Status, &row.TotalPrice,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
