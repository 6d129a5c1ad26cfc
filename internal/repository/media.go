package repository

import (
	"context"
	"io"
)

// MediaRepository stores binary clip content and returns playable references
// (local file paths). It owns no scheduling state. Get reports
// entity.ErrMediaNotFound for absent blobs; callers route that through the
// missing-media reconciliation path instead of failing a session.
type MediaRepository interface {
	Put(ctx context.Context, id string, content io.Reader) (string, error)
	Get(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}
