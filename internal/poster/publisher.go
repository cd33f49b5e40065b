package poster

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/atomicstack/tweet-popup/internal/logging/events"
	"github.com/atomicstack/tweet-popup/internal/protocol"
	"github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"
	"github.com/dghubble/sling"
	"github.com/google/uuid"
)

// DefaultUploadURL is the v1.1 media upload endpoint.
const DefaultUploadURL = "https://upload.twitter.com/1.1/media/upload.json"

var (
	// ErrEmptyPost is returned for a request with neither text nor image.
	ErrEmptyPost = errors.New("post has no text and no image")
	// ErrMissingToken is returned when the request carries no user token.
	ErrMissingToken = errors.New("missing access token")
)

// Publisher performs the network post for one request.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, req protocol.SubmissionRequest) (protocol.PostStatusCompleteEvent, error)
}

// TwitterPublisher posts through the v1.1 REST API, signing requests with
// the application's consumer credentials and the request's user token.
type TwitterPublisher struct {
	ConsumerKey    string
	ConsumerSecret string
	UploadURL      string
	// Transport replaces the underlying round tripper. Nil uses the default.
	Transport http.RoundTripper
}

// NewTwitterPublisher returns a publisher for the given consumer credentials.
func NewTwitterPublisher(consumerKey, consumerSecret string) *TwitterPublisher {
	return &TwitterPublisher{
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		UploadURL:      DefaultUploadURL,
	}
}

func (p *TwitterPublisher) Name() string {
	return "twitter"
}

func (p *TwitterPublisher) httpClient(ctx context.Context, pair protocol.AccessTokenPair) *http.Client {
	if p.Transport != nil {
		ctx = context.WithValue(ctx, oauth1.HTTPClient, &http.Client{Transport: p.Transport})
	}
	config := oauth1.NewConfig(p.ConsumerKey, p.ConsumerSecret)
	return config.Client(ctx, oauth1.NewToken(pair.Token, pair.Secret))
}

// Publish uploads the image, if any, and posts the status.
func (p *TwitterPublisher) Publish(ctx context.Context, req protocol.SubmissionRequest) (protocol.PostStatusCompleteEvent, error) {
	if req.StatusText == "" && req.ImageData == nil {
		return protocol.PostStatusCompleteEvent{}, ErrEmptyPost
	}
	if req.AccessTokenPair.Token == "" || req.AccessTokenPair.Secret == "" {
		return protocol.PostStatusCompleteEvent{}, ErrMissingToken
	}
	client := p.httpClient(ctx, req.AccessTokenPair)

	params := &twitter.StatusUpdateParams{}
	if req.ImageData != nil {
		mediaID, err := p.uploadMedia(ctx, client, *req.ImageData)
		if err != nil {
			return protocol.PostStatusCompleteEvent{}, err
		}
		params.MediaIds = []int64{mediaID}
	}

	tweet, _, err := twitter.NewClient(client).Statuses.Update(req.StatusText, params)
	if err != nil {
		return protocol.PostStatusCompleteEvent{}, fmt.Errorf("update status: %w", err)
	}
	event := protocol.PostStatusCompleteEvent{IDStr: tweet.IDStr, Text: tweet.Text}
	if event.IDStr == "" && tweet.ID != 0 {
		event.IDStr = strconv.FormatInt(tweet.ID, 10)
	}
	if tweet.User != nil {
		event.User.ScreenName = tweet.User.ScreenName
	}
	return event, nil
}

type mediaUploadParams struct {
	MediaData string `url:"media_data"`
}

type mediaUploadResult struct {
	MediaID       int64  `json:"media_id"`
	MediaIDString string `json:"media_id_string"`
}

func (p *TwitterPublisher) uploadMedia(ctx context.Context, client *http.Client, data string) (int64, error) {
	uploadURL := p.UploadURL
	if uploadURL == "" {
		uploadURL = DefaultUploadURL
	}
	s := sling.New().Client(client).Post(uploadURL).BodyForm(&mediaUploadParams{MediaData: data})
	httpReq, err := s.Request()
	if err != nil {
		return 0, fmt.Errorf("build media upload: %w", err)
	}
	result := new(mediaUploadResult)
	apiErr := new(twitter.APIError)
	resp, err := s.Do(httpReq.WithContext(ctx), result, apiErr)
	if err != nil {
		return 0, fmt.Errorf("upload media: %w", err)
	}
	if !apiErr.Empty() {
		return 0, fmt.Errorf("upload media: %w", *apiErr)
	}
	if resp.StatusCode/100 != 2 {
		return 0, fmt.Errorf("upload media: unexpected status %s", resp.Status)
	}
	if result.MediaID == 0 && result.MediaIDString != "" {
		id, err := strconv.ParseInt(result.MediaIDString, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("upload media: bad media id %q: %w", result.MediaIDString, err)
		}
		result.MediaID = id
	}
	if result.MediaID == 0 {
		return 0, errors.New("upload media: response carried no media id")
	}
	return result.MediaID, nil
}

// DryRunPublisher logs requests instead of posting them.
type DryRunPublisher struct {
	Handle string
}

func (DryRunPublisher) Name() string {
	return "dry-run"
}

// Publish returns a synthetic post id derived from a fresh uuid.
func (p DryRunPublisher) Publish(ctx context.Context, req protocol.SubmissionRequest) (protocol.PostStatusCompleteEvent, error) {
	if err := ctx.Err(); err != nil {
		return protocol.PostStatusCompleteEvent{}, err
	}
	if req.StatusText == "" && req.ImageData == nil {
		return protocol.PostStatusCompleteEvent{}, ErrEmptyPost
	}
	handle := p.Handle
	if handle == "" {
		handle = "dry-run"
	}
	id := uuid.New()
	postID := strconv.FormatUint(uint64(id.ID()), 10)
	events.Poster.DryRun(len(req.StatusText), req.ImageData != nil, handle)
	return protocol.PostStatusCompleteEvent{
		IDStr: postID,
		Text:  req.StatusText,
		User:  protocol.User{ScreenName: handle},
	}, nil
}
