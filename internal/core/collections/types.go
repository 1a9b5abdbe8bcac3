package collections

import "time"

// List names the two personal collections a user keeps.
type List string

const (
	// ListWishlist holds games the user wants.
	ListWishlist List = "wishlist"
	// ListVault holds games the user owns or has finished.
	ListVault List = "vault"
)

// Valid reports whether l is one of the known lists.
func (l List) Valid() bool {
	return l == ListWishlist || l == ListVault
}

// Item is one saved game in a user's list. Name and CoverURL are a
// snapshot taken at save time so lists render without a catalog lookup.
type Item struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	List      List      `json:"list"`
	GameID    int64     `json:"gameId"`
	Name      string    `json:"name"`
	CoverURL  string    `json:"coverUrl,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddItemRequest is the input for saving a game to a list.
type AddItemRequest struct {
	GameID   int64  `json:"gameId"`
	Name     string `json:"name"`
	CoverURL string `json:"coverUrl,omitempty"`
}
