package cerr

import (
	"errors"
	"fmt"

	"github.com/kazz187/todotxt/pkg/storage"
)

func WrapStorageReadError(target string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NewError(NotFound, target+" not found", err)
	}
	return NewError(Internal, "server error", fmt.Errorf("read %s: %w", target, err))
}

func WrapStorageWriteError(target string, err error) error {
	return NewError(Internal, "server error", fmt.Errorf("write %s: %w", target, err))
}

func WrapStorageListError(target string, err error) error {
	return NewError(Internal, "server error", fmt.Errorf("list %s: %w", target, err))
}
