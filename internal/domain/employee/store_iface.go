package employee

import "context"

type StoreAPI interface {
	Get(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	List(ctx context.Context) ([]Employee, error)
	Create(ctx context.Context, e Employee) (string, error)
	Update(ctx context.Context, e Employee) error
	Delete(ctx context.Context, id string) error
}
