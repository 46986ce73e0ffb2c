package model

// Author is how a post or reply presents who wrote it.
type Author struct {
	Username string `json:"username" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Avatar   string `json:"avatar,omitempty"`
}

// UserRegistry holds the usernames that already completed auth delegation once.
type UserRegistry []string

func (ur UserRegistry) Contains(username string) bool {
	for _, u := range ur {
		if u == username {
			return true
		}
	}
	return false
}
