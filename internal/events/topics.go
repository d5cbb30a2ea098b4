package events

const (
	TopicConnStatus       = "conn.status"
	TopicConversations    = "conv.batch"
	TopicConversationGone = "conv.removed"
	TopicTyping           = "typing.status"
	TopicReceipts         = "delivery.receipt"
	TopicContactUpdate    = "contact.update"
)
