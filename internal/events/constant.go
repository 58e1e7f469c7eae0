package events

// Rebroadcast kinds published by the channel manager.
const (
	KindNotification  = "notification:new"
	KindMessage       = "message:new"
	KindMessageUpdate = "message:update"
	KindTyping        = "typing"
	KindChannelStatus = "channel:status"
)
