package models

// User is the account the speaker is currently assigned to
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Present reports whether a user is assigned
func (u User) Present() bool {
	return u.ID != 0
}

// Index is the single byte exposed by the user index characteristic
func (u User) Index() byte {
	return byte(u.ID)
}
