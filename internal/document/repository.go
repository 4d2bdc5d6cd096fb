package document

import "context"

type Repository interface {
	Get(ctx context.Context, name string) (*Document, error)
	Save(ctx context.Context, doc *Document) error
	List(ctx context.Context) ([]string, error)
}
