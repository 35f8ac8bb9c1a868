package domain

// Follow is a directed subscription: UserID follows AuthorID.
type Follow struct {
	UserID   uint
	AuthorID uint
}

// Feed messages for the followed-authors page.
const (
	FeedNoSubscriptions = "you have no subscriptions yet"
	FeedNoPosts         = "your authors have no posts yet"
	FeedSubscriptions   = "your subscriptions"
)
