package collections

import (
	"context"
	"strings"
)

const maxNameLength = 500

type collectionService struct {
	repo Repository
}

// NewService creates the collection service backing the wishlist/vault
// endpoints.
func NewService(repo Repository) Service {
	return &collectionService{repo: repo}
}

func validateUserAndList(userID string, list List) error {
	if strings.TrimSpace(userID) == "" {
		return &ValidationError{Field: "user", Reason: "user id is required"}
	}
	if !list.Valid() {
		return &ValidationError{Field: "list", Reason: "must be wishlist or vault"}
	}
	return nil
}

func (s *collectionService) ListItems(ctx context.Context, userID string, list List) ([]Item, error) {
	if err := validateUserAndList(userID, list); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, userID, list)
}

func (s *collectionService) Add(ctx context.Context, userID string, list List, req AddItemRequest) (*Item, error) {
	if err := validateUserAndList(userID, list); err != nil {
		return nil, err
	}
	if req.GameID <= 0 {
		return nil, &ValidationError{Field: "gameId", Reason: "must be a positive integer"}
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if len(req.Name) > maxNameLength {
		return nil, &ValidationError{Field: "name", Reason: "is too long"}
	}

	item := &Item{
		UserID:   userID,
		List:     list,
		GameID:   req.GameID,
		Name:     req.Name,
		CoverURL: req.CoverURL,
	}
	return s.repo.Upsert(ctx, item)
}

func (s *collectionService) Remove(ctx context.Context, userID string, list List, gameID int64) error {
	if err := validateUserAndList(userID, list); err != nil {
		return err
	}
	if gameID <= 0 {
		return &ValidationError{Field: "gameId", Reason: "must be a positive integer"}
	}
	return s.repo.Remove(ctx, userID, list, gameID)
}

func (s *collectionService) Move(ctx context.Context, userID string, from, to List, gameID int64) error {
	if err := validateUserAndList(userID, from); err != nil {
		return err
	}
	if !to.Valid() {
		return &ValidationError{Field: "to", Reason: "must be wishlist or vault"}
	}
	if from == to {
		return &ValidationError{Field: "to", Reason: "must differ from the source list"}
	}
	if gameID <= 0 {
		return &ValidationError{Field: "gameId", Reason: "must be a positive integer"}
	}
	return s.repo.Move(ctx, userID, from, to, gameID)
}

func (s *collectionService) Reorder(ctx context.Context, userID string, list List, gameIDs []int64) error {
	if err := validateUserAndList(userID, list); err != nil {
		return err
	}
	if len(gameIDs) == 0 {
		return &ValidationError{Field: "order", Reason: "must contain at least one game id"}
	}
	seen := make(map[int64]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		if id <= 0 {
			return &ValidationError{Field: "order", Reason: "game ids must be positive integers"}
		}
		if _, dup := seen[id]; dup {
			return &ValidationError{Field: "order", Reason: "game ids must be unique"}
		}
		seen[id] = struct{}{}
	}
	return s.repo.Reorder(ctx, userID, list, gameIDs)
}
