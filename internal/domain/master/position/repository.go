package position

import "context"

type PositionRepository interface {
	Create(ctx context.Context, position Position) (Position, error)
	List(ctx context.Context) ([]Position, error)
}
