package department

import "context"

type DepartmentRepository interface {
	Create(ctx context.Context, d Department) (Department, error)
	GetByID(ctx context.Context, id int64) (Department, error)
	List(ctx context.Context) ([]Department, error)
	Update(ctx context.Context, d Department) error
}
