package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"Gamedex/internal/core/collections"
)

type postgresCollectionRepo struct {
	db *sql.DB
}

// NewCollectionRepository creates a new PostgreSQL collection repository
func NewCollectionRepository(db *sql.DB) collections.Repository {
	return &postgresCollectionRepo{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// ListItems returns a user's list ordered by position.
func (r *postgresCollectionRepo) ListItems(ctx context.Context, userID string, list collections.List) ([]collections.Item, error) {
	query := `
		SELECT id, user_id, list, game_id, name, cover_url, position, created_at, updated_at
		FROM collection_items
		WHERE user_id = $1 AND list = $2
		ORDER BY position ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, string(list))
	if err != nil {
		return nil, fmt.Errorf("failed to list collection items: %w", err)
	}
	defer rows.Close()

	items := []collections.Item{}
	for rows.Next() {
		var item collections.Item
		var coverURL sql.NullString
		if err := rows.Scan(&item.ID, &item.UserID, &item.List, &item.GameID,
			&item.Name, &coverURL, &item.Position, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection item: %w", err)
		}
		item.CoverURL = coverURL.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read collection items: %w", err)
	}

	return items, nil
}

// Upsert inserts the item at the end of the list, or refreshes the
// snapshot fields if the game is already saved there.
func (r *postgresCollectionRepo) Upsert(ctx context.Context, item *collections.Item) (*collections.Item, error) {
	query := `
		INSERT INTO collection_items (user_id, list, game_id, name, cover_url, position)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM collection_items WHERE user_id = $1 AND list = $2))
		ON CONFLICT (user_id, list, game_id)
		DO UPDATE SET name = EXCLUDED.name, cover_url = EXCLUDED.cover_url, updated_at = NOW()
		RETURNING id, user_id, list, game_id, name, cover_url, position, created_at, updated_at`

	var coverURL sql.NullString
	err := r.db.QueryRowContext(ctx, query,
		item.UserID, string(item.List), item.GameID, item.Name, item.CoverURL).
		Scan(&item.ID, &item.UserID, &item.List, &item.GameID,
			&item.Name, &coverURL, &item.Position, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert collection item: %w", err)
	}
	item.CoverURL = coverURL.String

	return item, nil
}

// Remove deletes a game from a list.
func (r *postgresCollectionRepo) Remove(ctx context.Context, userID string, list collections.List, gameID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM collection_items WHERE user_id = $1 AND list = $2 AND game_id = $3`,
		userID, string(list), gameID)
	if err != nil {
		return fmt.Errorf("failed to remove collection item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check removed rows: %w", err)
	}
	if affected == 0 {
		return collections.ErrItemNotFound
	}

	return nil
}

// Move transfers a game to the other list, appending it at the end. If
// the game already exists in the destination the source entry is simply
// dropped so the two never duplicate.
func (r *postgresCollectionRepo) Move(ctx context.Context, userID string, from, to collections.List, gameID int64) error {
	query := `
		UPDATE collection_items
		SET list = $1,
		    position = (SELECT COALESCE(MAX(position) + 1, 0) FROM collection_items WHERE user_id = $2 AND list = $1),
		    updated_at = NOW()
		WHERE user_id = $2 AND list = $3 AND game_id = $4`

	result, err := r.db.ExecContext(ctx, query, string(to), userID, string(from), gameID)
	if err != nil {
		if isUniqueViolation(err) {
			return r.Remove(ctx, userID, from, gameID)
		}
		return fmt.Errorf("failed to move collection item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check moved rows: %w", err)
	}
	if affected == 0 {
		return collections.ErrItemNotFound
	}

	return nil
}

// Reorder rewrites list positions to match the given game id order.
func (r *postgresCollectionRepo) Reorder(ctx context.Context, userID string, list collections.List, gameIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reorder transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE collection_items SET position = $1, updated_at = NOW()
		 WHERE user_id = $2 AND list = $3 AND game_id = $4`)
	if err != nil {
		return fmt.Errorf("failed to prepare reorder statement: %w", err)
	}
	defer stmt.Close()

	for pos, gameID := range gameIDs {
		if _, err := stmt.ExecContext(ctx, pos, userID, string(list), gameID); err != nil {
			return fmt.Errorf("failed to reposition game %d: %w", gameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}

	return nil
}
