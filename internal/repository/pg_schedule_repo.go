package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendahub/booking-backend/internal/domain"
)

type pgWorkScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewPgWorkScheduleRepository returns a WorkScheduleRepository backed by PostgreSQL.
func NewPgWorkScheduleRepository(pool *pgxpool.Pool) WorkScheduleRepository {
	return &pgWorkScheduleRepository{pool: pool}
}

func (r *pgWorkScheduleRepository) BlocksFor(ctx context.Context, providerID uuid.UUID, weekday int) ([]domain.WorkHourBlock, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, provider_id, weekday, start_time, end_time
		FROM provider_work_hours
		WHERE provider_id = $1 AND weekday = $2
		ORDER BY start_time ASC`, providerID, weekday)
	if err != nil {
		return nil, fmt.Errorf("blocks for provider: %w", err)
	}

	blocks, err := scanWorkHourBlocks(rows)
	if err != nil {
		return nil, err
	}
	if len(blocks) > 0 {
		return blocks, nil
	}

	// No blocks: distinguish "closed that day" from "no such provider".
	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM providers WHERE id = $1)`, providerID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check provider exists: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	return blocks, nil
}

// ---- helpers ----

func scanWorkHourBlocks(rows pgx.Rows) ([]domain.WorkHourBlock, error) {
	defer rows.Close()

	var blocks []domain.WorkHourBlock
	for rows.Next() {
		var (
			b          domain.WorkHourBlock
			start, end pgtype.Time
		)
		if err := rows.Scan(&b.ID, &b.ProviderID, &b.Weekday, &start, &end); err != nil {
			return nil, err
		}
		b.Start = timeOfDay(start)
		b.End = timeOfDay(end)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// timeOfDay converts a pgtype.Time (microseconds since midnight) into the
// domain representation.
func timeOfDay(t pgtype.Time) domain.TimeOfDay {
	minutes := int(t.Microseconds / 60_000_000)
	return domain.TimeOfDay{Hour: minutes / 60, Minute: minutes % 60}
}

// pgTime converts a domain.TimeOfDay into a pgtype.Time for TIME columns.
func pgTime(t domain.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t.Minutes()) * 60_000_000, Valid: true}
}
