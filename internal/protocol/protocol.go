// Package protocol defines the messages exchanged between the compose screen
// and the background poster.
package protocol

import (
	"fmt"
	"net/url"
)

// Event and request names carried on the background channel.
const (
	PostStatus         = "postStatus"
	PostStatusComplete = "postStatusComplete"
	PostStatusError    = "postStatusError"
	SendTweetShortcut  = "send-tweet-shortcut"
)

// DefaultHost is the service host used to build permanent post URLs.
const DefaultHost = "twitter.com"

// AccessTokenPair is the user's OAuth1 token. The compose screen passes it
// through untouched; only the poster reads it.
type AccessTokenPair struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

// SubmissionRequest is sent under PostStatus. ImageData is nil when no image
// is attached and encodes as JSON null.
type SubmissionRequest struct {
	AccessTokenPair AccessTokenPair `json:"accessTokenPair"`
	StatusText      string          `json:"statusText"`
	ImageData       *string         `json:"imageData"`
}

// User identifies the author of a published post.
type User struct {
	ScreenName string `json:"screen_name"`
}

// PostStatusCompleteEvent is emitted when a post was published.
type PostStatusCompleteEvent struct {
	IDStr string `json:"id_str"`
	Text  string `json:"text,omitempty"`
	User  User   `json:"user"`
}

// PostStatusErrorEvent is emitted when publishing failed. Consumers must not
// depend on Message being present.
type PostStatusErrorEvent struct {
	Message string `json:"message,omitempty"`
}

// StatusURL returns the permanent URL of a post.
func StatusURL(host, handle, id string) string {
	if host == "" {
		host = DefaultHost
	}
	return fmt.Sprintf("https://%s/%s/status/%s", host, url.PathEscape(handle), url.PathEscape(id))
}
