package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agendahub/booking-backend/internal/domain"
)

type pgProviderRepository struct {
	pool *pgxpool.Pool
}

// NewPgProviderRepository returns a ProviderRepository backed by PostgreSQL.
func NewPgProviderRepository(pool *pgxpool.Pool) ProviderRepository {
	return &pgProviderRepository{pool: pool}
}

func (r *pgProviderRepository) Create(ctx context.Context, p *domain.Provider) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO providers (id, user_id, establishment_id, display_name, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.UserID, p.EstablishmentID, p.DisplayName, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

func (r *pgProviderRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Provider, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, establishment_id, display_name, created_at
		FROM providers WHERE id = $1`, id)

	var p domain.Provider
	err := row.Scan(&p.ID, &p.UserID, &p.EstablishmentID, &p.DisplayName, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return &p, nil
}

func (r *pgProviderRepository) List(ctx context.Context) ([]*domain.Provider, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, establishment_id, display_name, created_at
		FROM providers ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var providers []*domain.Provider
	for rows.Next() {
		var p domain.Provider
		if err := rows.Scan(&p.ID, &p.UserID, &p.EstablishmentID, &p.DisplayName, &p.CreatedAt); err != nil {
			return nil, err
		}
		providers = append(providers, &p)
	}
	return providers, rows.Err()
}

func (r *pgProviderRepository) Update(ctx context.Context, p *domain.Provider) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE providers SET display_name = $1, establishment_id = $2 WHERE id = $3`,
		p.DisplayName, p.EstablishmentID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	return nil
}

func (r *pgProviderRepository) AddWorkHour(ctx context.Context, block *domain.WorkHourBlock) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO provider_work_hours (provider_id, weekday, start_time, end_time)
		VALUES ($1,$2,$3,$4)
		RETURNING id`,
		block.ProviderID, block.Weekday, pgTime(block.Start), pgTime(block.End),
	).Scan(&block.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateWorkHour
		}
		return fmt.Errorf("insert work hour: %w", err)
	}
	return nil
}

func (r *pgProviderRepository) ListWorkHours(ctx context.Context, providerID uuid.UUID) ([]domain.WorkHourBlock, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, provider_id, weekday, start_time, end_time
		FROM provider_work_hours
		WHERE provider_id = $1
		ORDER BY weekday ASC, start_time ASC`, providerID)
	if err != nil {
		return nil, fmt.Errorf("list work hours: %w", err)
	}
	return scanWorkHourBlocks(rows)
}

func (r *pgProviderRepository) DeleteWorkHour(ctx context.Context, providerID uuid.UUID, workHourID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM provider_work_hours WHERE id = $1 AND provider_id = $2`,
		workHourID, providerID,
	)
	if err != nil {
		return false, fmt.Errorf("delete work hour: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
