package types

import "strings"

// AllowedEmojis is the fixed reaction set shared by diaries and comments.
var AllowedEmojis = []string{"❤️", "😂", "😮", "😢", "👏"}

func IsAllowedEmoji(emoji string) bool {
	for _, allowed := range AllowedEmojis {
		if emoji == allowed {
			return true
		}
	}
	return false
}

func AllowedEmojiList() string {
	return strings.Join(AllowedEmojis, " ")
}

type ReactRequest struct {
	Emoji string `json:"emoji"`
}
