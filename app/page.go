package app

import (
	"github.com/navbryce/feed-be/model"
)

// PageOpts selects the window [Offset, Offset+Limit) of the stored collection. A nil Limit is unbounded.
type PageOpts struct {
	Offset int
	Limit  *int
}

// Window never fails: an offset past the end yields an empty page.
func (po PageOpts) Window(posts []*model.Post) []*model.Post {
	if po.Offset >= len(posts) {
		return []*model.Post{}
	}
	end := len(posts)
	// compared against the remaining length so a huge limit cannot overflow
	if po.Limit != nil && *po.Limit < end-po.Offset {
		end = po.Offset + *po.Limit
	}
	return posts[po.Offset:end]
}
