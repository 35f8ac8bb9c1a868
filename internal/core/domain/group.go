package domain

// Group is a community a post may belong to.
type Group struct {
	ID          uint
	Title       string
	Slug        string
	Description string
}

func (g *Group) String() string {
	return g.Title
}
