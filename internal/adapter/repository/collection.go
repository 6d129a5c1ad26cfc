package repository

import (
	"context"
	"database/sql"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

type collectionRepository struct {
	store *Store
}

// NewCollectionRepository exposes the store's collection records.
func NewCollectionRepository(store *Store) repository.CollectionRepository {
	return &collectionRepository{store: store}
}

func (s *Store) loadCollections(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, is_active, created_at, updated_at, position
		FROM collections ORDER BY position`)
	if err != nil {
		s.logger.WithError(err).Warn("load collections, starting empty")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c         entity.Collection
			isActive  int
			createdAt string
			updatedAt string
			position  int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &isActive, &createdAt, &updatedAt, &position); err != nil {
			s.logger.WithError(err).Warn("skipping unreadable collection row")
			continue
		}
		c.IsActive = isActive != 0
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			s.logger.WithError(err).WithField("collection_id", c.ID).Warn("skipping collection row with bad created_at")
			continue
		}
		if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
			s.logger.WithError(err).WithField("collection_id", c.ID).Warn("skipping collection row with bad updated_at")
			continue
		}
		s.collections[c.ID] = &c
		s.collectionOrder = append(s.collectionOrder, c.ID)
		if position >= s.collectionSeq {
			s.collectionSeq = position + 1
		}
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Warn("collection load ended early")
	}
	s.logger.WithField("count", len(s.collectionOrder)).Debug("collections loaded")
}

func (s *Store) mirrorCollection(collection *entity.Collection, position int64) {
	c := collection.Clone()
	s.enqueue("save collection", func(db *sql.DB) error {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck
		if _, err := tx.Exec(s.q(`DELETE FROM collections WHERE id = ?`), c.ID); err != nil {
			return err
		}
		_, err = tx.Exec(s.q(`INSERT INTO collections (id, name, is_active, created_at, updated_at, position)
			VALUES (?, ?, ?, ?, ?, ?)`),
			c.ID, c.Name, boolToInt(c.IsActive), fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt), position)
		if err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (r *collectionRepository) Create(ctx context.Context, collection *entity.Collection) (*entity.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := collection.Clone()
	position := s.collectionSeq
	s.collectionSeq++
	s.collections[stored.ID] = stored
	s.collectionOrder = append(s.collectionOrder, stored.ID)
	s.mirrorCollection(stored, position)
	return stored.Clone(), nil
}

func (r *collectionRepository) Update(ctx context.Context, collection *entity.Collection) (*entity.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection.ID]; !ok {
		return nil, entity.ErrCollectionNotFound
	}
	stored := collection.Clone()
	s.collections[stored.ID] = stored
	s.mirrorCollection(stored, s.collectionPosition(stored.ID))
	return stored.Clone(), nil
}

// Caller holds s.mu.
func (s *Store) collectionPosition(id string) int64 {
	for i, existing := range s.collectionOrder {
		if existing == id {
			return int64(i)
		}
	}
	return s.collectionSeq
}

func (r *collectionRepository) GetByID(ctx context.Context, id string) (*entity.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	collection, ok := s.collections[id]
	if !ok {
		return nil, entity.ErrCollectionNotFound
	}
	return collection.Clone(), nil
}

func (r *collectionRepository) List(ctx context.Context) ([]entity.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Collection, 0, len(s.collectionOrder))
	for _, id := range s.collectionOrder {
		out = append(out, *s.collections[id].Clone())
	}
	return out, nil
}

func (r *collectionRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[id]; !ok {
		return entity.ErrCollectionNotFound
	}
	delete(s.collections, id)
	for i, existing := range s.collectionOrder {
		if existing == id {
			s.collectionOrder = append(s.collectionOrder[:i], s.collectionOrder[i+1:]...)
			break
		}
	}
	s.enqueue("delete collection", func(db *sql.DB) error {
		_, err := db.Exec(s.q(`DELETE FROM collections WHERE id = ?`), id)
		return err
	})
	return nil
}
