package models

// Message is immutable once written. Identity is (ConversationID, MessageID);
// the messages collection carries a unique index on that pair.
type Message struct {
	ConversationID  string `bson:"conversation_id" json:"conversationId"`
	MessageID       string `bson:"message_id" json:"messageId"`
	SenderUsername  string `bson:"sender_username" json:"senderUsername"`
	Text            string `bson:"text" json:"text"`
	CreatedUnixTime int64  `bson:"created_unix_time" json:"createdUnixTime"`
}

type SendMessageRequest struct {
	ID             string `json:"id"`
	SenderUsername string `json:"senderUsername"`
	Text           string `json:"text"`
}

type SendMessageResponse struct {
	CreatedUnixTime int64 `json:"createdUnixTime"`
}

// ListMessagesItem is the projected row returned by message listings.
type ListMessagesItem struct {
	Text           string `bson:"text" json:"text"`
	SenderUsername string `bson:"sender_username" json:"senderUsername"`
	UnixTime       int64  `bson:"created_unix_time" json:"unixTime"`
}

type ListMessagesResponse struct {
	Messages []ListMessagesItem `json:"messages"`
	NextURI  string             `json:"nextUri,omitempty"`
}
