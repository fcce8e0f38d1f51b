// Package metadata is a small key-value repository on top of the client's
// local sqlite database. The session store keeps the persisted credential
// and identity here.
package metadata

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context) error
}
