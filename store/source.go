package store

import (
	"context"
	"database/sql"
	"errors"
)

// ThumbnailSource serves stored thumbnail blobs to the gallery pipeline.
// Lookups go by content hash first; files indexed before hashes were
// recorded resolve through their unique path instead.
type ThumbnailSource struct {
	db *sql.DB
}

func NewThumbnailSource(db *sql.DB) *ThumbnailSource {
	return &ThumbnailSource{db: db}
}

// ThumbnailBytes returns the stored blob for the hash or path, or nil
// without error when the database has none.
func (s *ThumbnailSource) ThumbnailBytes(ctx context.Context, hash, path string) ([]byte, error) {
	if hash != "" {
		blob, err := s.blobByHash(ctx, hash)
		if err != nil {
			return nil, err
		}
		if blob != nil {
			return blob, nil
		}
	}

	if path == "" {
		return nil, nil
	}

	var resolved string
	err := s.db.QueryRowContext(ctx, "SELECT hash FROM IMAGE_FILE WHERE path = ?", path).Scan(&resolved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.blobByHash(ctx, resolved)
}

func (s *ThumbnailSource) blobByHash(ctx context.Context, hash string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT thumbnail FROM IMAGE_METADATA WHERE hash = ?", hash).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, nil
	}
	return blob, nil
}
