package repositoryimpl

import (
	"context"
	"strings"

	"github.com/kazz187/todotxt/internal/document"
	"github.com/kazz187/todotxt/pkg/cerr"
	"github.com/kazz187/todotxt/pkg/storage"
)

const documentExt = ".txt"

// TextRepository stores each document as a plain todo.txt file named after
// the document.
type TextRepository struct {
	storage storage.Storage
}

func NewTextRepository(s storage.Storage) *TextRepository {
	return &TextRepository{storage: s}
}

func validName(name string) bool {
	return strings.HasSuffix(name, documentExt) && len(name) > len(documentExt) && !strings.Contains(name, "..")
}

func (r *TextRepository) Get(ctx context.Context, name string) (*document.Document, error) {
	if !validName(name) {
		return nil, cerr.NewError(cerr.InvalidArgument, "document name must end in "+documentExt, nil)
	}
	data, err := r.storage.Read(ctx, name)
	if err != nil {
		return nil, cerr.WrapStorageReadError("document "+name, err)
	}
	return document.New(name, string(data)), nil
}

func (r *TextRepository) Save(ctx context.Context, doc *document.Document) error {
	if !validName(doc.Name) {
		return cerr.NewError(cerr.InvalidArgument, "document name must end in "+documentExt, nil)
	}
	if err := r.storage.Write(ctx, doc.Name, []byte(doc.Text())); err != nil {
		return cerr.WrapStorageWriteError("document "+doc.Name, err)
	}
	return nil
}

func (r *TextRepository) List(ctx context.Context) ([]string, error) {
	paths, err := r.storage.List(ctx, "")
	if err != nil {
		return nil, cerr.WrapStorageListError("documents", err)
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		if validName(p) {
			names = append(names, p)
		}
	}
	return names, nil
}
