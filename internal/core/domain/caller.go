package domain

// Caller identifies who issues the current request. The zero value is an anonymous visitor.
type Caller struct {
	UserID   uint
	Username string
}

var Anonymous = Caller{}

func CallerFor(u *User) Caller {
	if u == nil {
		return Anonymous
	}
	return Caller{UserID: u.ID, Username: u.Username}
}

func (c Caller) IsAuthenticated() bool {
	return c.UserID != 0
}

func (c Caller) Is(userID uint) bool {
	return c.IsAuthenticated() && c.UserID == userID
}
