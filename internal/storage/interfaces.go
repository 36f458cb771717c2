package storage

import "context"

type Storage interface {
	Save(ctx context.Context, path string, data []byte) error
	Exists(ctx context.Context, path string) bool
}
