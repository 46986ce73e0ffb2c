package util

import (
	"fmt"
	"net/url"

	"github.com/navbryce/feed-be/config"
)

func Avatar(seed string) string {
	return fmt.Sprintf("https://avatars.dicebear.com/api/bottts/%v.svg?size=%v", url.PathEscape(seed), config.AVATAR_SIZE)
}
