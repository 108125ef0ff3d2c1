package services

// Collection names in the external document store.
const (
	colProfiles       = "profiles"
	colCredentials    = "credentials"
	colFriendRequests = "friendRequests"
	colFriends        = "friends"
	colChats          = "chats"
	colMessages       = "messages"
	colNotifications  = "notifications"
	colReports        = "reports"
	colReportComments = "reportComments"
	colDeviceTokens   = "deviceTokens"
)
