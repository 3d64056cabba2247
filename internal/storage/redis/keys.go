package redis

import (
	"fmt"

	"github.com/mcoot/baldagame/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "balda"

// profileKey returns the Redis key for a Profile
func profileKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, id)
}

// credentialsKey returns the Redis key for login Credentials
func credentialsKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:credentials:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// gameKey returns the Redis key for a game snapshot
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the SET of stored game ids
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// chatIndexKey returns the Redis key for the chat -> game_id index
func chatIndexKey(chat model.ChatKey) string {
	return fmt.Sprintf("%s:idx:chat:%d:%d", keyPrefix, chat.ChatID, chat.ThreadID)
}

// joinCodeIndexKey returns the Redis key for the join code -> game_id index
func joinCodeIndexKey(code string) string {
	return fmt.Sprintf("%s:idx:join_code:%s", keyPrefix, code)
}

// dictionaryKey returns the Redis key for the dictionary word set
func dictionaryKey() string {
	return fmt.Sprintf("%s:dictionary", keyPrefix)
}
