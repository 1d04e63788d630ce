package models

import "time"

// Conversation is a per-user pointer row. One logical conversation between
// A and B yields exactly two rows: (username=A, participant=B) and the
// mirror, both carrying the same conversation id and last-modified time.
type Conversation struct {
	Username             string `bson:"username" json:"username"`
	Participant          string `bson:"participant" json:"participant"`
	ConversationID       string `bson:"conversation_id" json:"conversationId"`
	LastModifiedUnixTime int64  `bson:"last_modified_unix_time" json:"lastModifiedUnixTime"`
}

type AddConversationRequest struct {
	FirstMessage SendMessageRequest `json:"firstMessage"`
	Participants []string           `json:"participants"`
}

type AddConversationResponse struct {
	ID                  string    `json:"id"`
	Participants        []string  `json:"participants"`
	LastModifiedDateUtc time.Time `json:"lastModifiedDateUtc"`
}

// ListConversationsItem is a pointer row enriched with the participant's
// live profile.
type ListConversationsItem struct {
	ConversationID       string  `json:"conversationId"`
	Profile              Profile `json:"profile"`
	LastModifiedUnixTime int64   `json:"lastModifiedUnixTime"`
}

type ListConversationsResponse struct {
	Conversations []ListConversationsItem `json:"conversations"`
	NextURI       string                  `json:"nextUri,omitempty"`
}
