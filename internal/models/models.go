package models

import "time"

type User struct {
	ID                   string    `json:"id"`
	Followings           []string  `json:"followings"`
	Followers            []string  `json:"followers"`
	NewsFeed             []string  `json:"news_feed"`
	PositivityPercentage float64   `json:"positivity_percentage"`
	Created              time.Time `json:"created"`
	LastUpdated          time.Time `json:"last_updated"`
}

type Member struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // "user" or "group"
}

type Group struct {
	ID      string    `json:"id"`
	Members []Member  `json:"members"`
	Created time.Time `json:"created"`
}

type Post struct {
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
	Entry    string `json:"entry"`
}

type Stats struct {
	TotalUsers         int     `json:"total_users"`
	TotalGroups        int     `json:"total_groups"`
	TotalMessages      int     `json:"total_messages"`
	PositivePercentage float64 `json:"positive_percentage"`
	IDsValid           bool    `json:"ids_valid"`
	InvalidID          string  `json:"invalid_id,omitempty"`
	LastUpdatedUser    string  `json:"last_updated_user,omitempty"`
}

// ActivityEvent is the message published to the activity stream.
type ActivityEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ActorID    string    `json:"actor_id"`
	TargetID   string    `json:"target_id,omitempty"`
	Body       string    `json:"body,omitempty"`
	Entry      string    `json:"entry,omitempty"`
	Recipients []string  `json:"recipients,omitempty"`
	Created    time.Time `json:"created"`
}
