package model

import "fmt"

const (
	ChatSessionsTable = "ChatSessions"
	ChatMessagesTable = "ChatMessages"
	SiteConfigTable   = "SiteConfig"
	UsersTable        = "Users"
	FavoritesTable    = "Favorites"
)

const (
	ChatSessionsByStatusIndex  = "byStatus"
	ChatMessagesBySessionIndex = "bySession"
	UsersByEmailIndex          = "byEmail"
	FavoritesByUserIndex       = "byUser"
)

// CompositePK joins an owner id and an entity id into a single partition key.
func CompositePK(ownerID, entityID string) string {
	return fmt.Sprintf("%s#%s", ownerID, entityID)
}
