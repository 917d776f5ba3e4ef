package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/master/position"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

const positionTitleConstraint = "uq_position_title"

type positionRepositoryImpl struct {
	db *database.DB
}

func NewPositionRepository(db *database.DB) position.PositionRepository {
	return &positionRepositoryImpl{db: db}
}

// Create implements position.PositionRepository.
func (r *positionRepositoryImpl) Create(ctx context.Context, p position.Position) (position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO position (title, description)
		VALUES ($1, $2)
		RETURNING position_id, title, description
	`

	var result position.Position
	err := q.QueryRow(ctx, query, p.Title, p.Description).Scan(
		&result.ID,
		&result.Title,
		&result.Description,
	)

	if err != nil {
		if database.IsUniqueViolation(err, positionTitleConstraint) {
			return position.Position{}, position.ErrPositionTitleExists
		}
		return position.Position{}, fmt.Errorf("failed to create position: %w", err)
	}

	return result, nil
}

// List implements position.PositionRepository.
func (r *positionRepositoryImpl) List(ctx context.Context) ([]position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT position_id, title, description
		FROM position
		ORDER BY title ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}
	defer rows.Close()

	positions := make([]position.Position, 0)
	for rows.Next() {
		var p position.Position
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return positions, nil
}
