package entity

// LibraryCard is a physical card record owned by exactly one user.
// Issue and expiration dates may be absent on freshly linked cards.
type LibraryCard struct {
	ID             string  `json:"id"`
	Password       string  `json:"password"`
	IssueDate      *string `json:"issueDate"`
	ExpirationDate *string `json:"expirationDate"`
}

// User is the profile record as served by the gateway. Password is only ever
// sent upstream, never rendered. CardPassword is transient state used while
// linking a card and must not be persisted back from a profile read.
type User struct {
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	Password      string       `json:"password,omitempty"`
	LastName      *string      `json:"lastName"`
	FirstName     string       `json:"firstName"`
	DateOfBirth   *string      `json:"dateOfBirth"`
	Gender        *bool        `json:"gender"`
	Address       *string      `json:"address"`
	Email         *string      `json:"email"`
	PhoneNumber   *string      `json:"phoneNumber"`
	AvatarImage   *string      `json:"avatarImage"`
	LibraryCard   *LibraryCard `json:"libraryCard"`
	CardPassword  string       `json:"-"`
	FavoriteBooks []string     `json:"favoriteBooks"`
}

// HasCard reports whether the user has a linked library card.
func (u User) HasCard() bool {
	return u.LibraryCard != nil && u.LibraryCard.ID != ""
}

// CardNumber returns the linked card identifier, or "" when no card is linked.
func (u User) CardNumber() string {
	if u.LibraryCard == nil {
		return ""
	}
	return u.LibraryCard.ID
}
