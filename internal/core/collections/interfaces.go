package collections

import "context"

// Repository defines persistence for collection items.
type Repository interface {
	// ListItems returns a user's list ordered by position.
	ListItems(ctx context.Context, userID string, list List) ([]Item, error)

	// Upsert inserts the item or refreshes its snapshot fields if the
	// game is already in the list. New items are appended at the end.
	Upsert(ctx context.Context, item *Item) (*Item, error)

	// Remove deletes a game from a list. Returns ErrItemNotFound when
	// the game is not in the list.
	Remove(ctx context.Context, userID string, list List, gameID int64) error

	// Move transfers a game between the user's lists, appending it to
	// the destination. Moving a game already present in the destination
	// collapses the two entries into one.
	Move(ctx context.Context, userID string, from, to List, gameID int64) error

	// Reorder rewrites the positions of a list to match the given game
	// id order. Ids not present in the list are ignored.
	Reorder(ctx context.Context, userID string, list List, gameIDs []int64) error
}

// Service defines the collection business logic used by handlers.
type Service interface {
	ListItems(ctx context.Context, userID string, list List) ([]Item, error)
	Add(ctx context.Context, userID string, list List, req AddItemRequest) (*Item, error)
	Remove(ctx context.Context, userID string, list List, gameID int64) error
	Move(ctx context.Context, userID string, from, to List, gameID int64) error
	Reorder(ctx context.Context, userID string, list List, gameIDs []int64) error
}
