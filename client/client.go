// Package client is the Go SDK for the engagement engine. It exposes a
// typed method per HTTP operation and an optimistic-update state machine
// for UIs that render a prediction before the server confirms.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/neighborly/engage/internal/httputil"
	"github.com/neighborly/engage/internal/model"
)

const defaultTimeout = 10 * time.Second

// Client talks to an engagement engine instance. The zero value is not
// usable; construct with New.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the given base URL authenticating with the
// given bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response decoded from the server's error
// envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope httputil.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN", Message: resp.Status}
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func targetPath(ref model.Ref, suffix string) string {
	return fmt.Sprintf("/targets/%s/%d/%s", ref.Kind, ref.ID, suffix)
}

// ToggleReaction flips the caller's reaction on a target and returns
// the authoritative liked state and count.
func (c *Client) ToggleReaction(ctx context.Context, ref model.Ref) (*model.ReactionResult, error) {
	var result model.ReactionResult
	if err := c.do(ctx, http.MethodPost, targetPath(ref, "reaction"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Liked reports which of the given targets the caller has reacted to,
// in one round trip. Use it to hydrate liked flags on a list view.
func (c *Client) Liked(ctx context.Context, kind model.Kind, ids []int64) (*model.LikedResponse, error) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	path := fmt.Sprintf("/targets/%s/liked?ids=%s", kind, strings.Join(parts, ","))

	var result model.LikedResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ToggleCommentReaction flips an emoji reaction on a comment.
func (c *Client) ToggleCommentReaction(ctx context.Context, commentID int64, emoji string) (*model.CommentReactionResult, error) {
	var result model.CommentReactionResult
	path := fmt.Sprintf("/comments/%d/reactions", commentID)
	req := model.ToggleCommentReactionRequest{Emoji: emoji}
	if err := c.do(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateComment posts a comment (or a reply when ParentCommentID is
// set) to a target.
func (c *Client) CreateComment(ctx context.Context, ref model.Ref, req model.CreateCommentRequest) (*model.CommentResult, error) {
	var result model.CommentResult
	if err := c.do(ctx, http.MethodPost, targetPath(ref, "comments"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EditComment replaces a comment's content.
func (c *Client) EditComment(ctx context.Context, commentID int64, content string) (*model.Comment, error) {
	var result model.Comment
	path := fmt.Sprintf("/comments/%d", commentID)
	req := model.UpdateCommentRequest{Content: content}
	if err := c.do(ctx, http.MethodPatch, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteComment removes a comment and its replies.
func (c *Client) DeleteComment(ctx context.Context, commentID int64) (*model.DeleteCommentResult, error) {
	var result model.DeleteCommentResult
	path := fmt.Sprintf("/comments/%d", commentID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Thread fetches a page of the target's discussion.
func (c *Client) Thread(ctx context.Context, ref model.Ref, cursor string, limit int) (*model.ThreadResponse, error) {
	path := targetPath(ref, "comments")
	sep := "?"
	if cursor != "" {
		path += sep + "cursor=" + cursor
		sep = "&"
	}
	if limit > 0 {
		path += sep + "limit=" + strconv.Itoa(limit)
	}

	var result model.ThreadResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetAttendance sets the caller's RSVP. A nil status cancels.
func (c *Client) SetAttendance(ctx context.Context, eventID int64, status *string) (*model.AttendanceResult, error) {
	var result model.AttendanceResult
	path := fmt.Sprintf("/events/%d/attendance", eventID)
	req := model.SetAttendanceRequest{Status: status}
	if err := c.do(ctx, http.MethodPut, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AttendanceStatus fetches the caller's own RSVP on an event.
// Status "none" means no RSVP is held.
func (c *Client) AttendanceStatus(ctx context.Context, eventID int64) (*model.AttendanceStatusResponse, error) {
	var result model.AttendanceStatusResponse
	path := fmt.Sprintf("/events/%d/attendance", eventID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckIn records an attendee's arrival. Organizer only.
func (c *Client) CheckIn(ctx context.Context, eventID, attendeeID int64) (*model.CheckInResult, error) {
	var result model.CheckInResult
	path := fmt.Sprintf("/events/%d/checkins", eventID)
	req := model.CheckInRequest{AttendeeID: attendeeID}
	if err := c.do(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListCheckIns returns the event's door list. Organizer only.
func (c *Client) ListCheckIns(ctx context.Context, eventID int64) (*model.CheckInListResponse, error) {
	var result model.CheckInListResponse
	path := fmt.Sprintf("/events/%d/checkins", eventID)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Share republishes a target into the caller's feed.
func (c *Client) Share(ctx context.Context, ref model.Ref) (*model.Share, error) {
	var result model.Share
	if err := c.do(ctx, http.MethodPost, targetPath(ref, "shares"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteShare removes one of the caller's shares.
func (c *Client) DeleteShare(ctx context.Context, shareID int64) error {
	path := fmt.Sprintf("/shares/%d", shareID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ListShares returns the caller's shares.
func (c *Client) ListShares(ctx context.Context, limit int) (*model.ShareListResponse, error) {
	path := "/shares"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var result model.ShareListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Summary fetches the engagement rollup for a target.
func (c *Client) Summary(ctx context.Context, ref model.Ref) (*model.EngagementSummary, error) {
	var result model.EngagementSummary
	if err := c.do(ctx, http.MethodGet, targetPath(ref, "summary"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
