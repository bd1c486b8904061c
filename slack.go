package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultAPIBaseURL = "https://slack.com/api"

// slackClient talks to the Slack Web API. Errors are reported in-band via
// the ok/error envelope, so the HTTP layer never retries on its own.
type slackClient struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
}

func newSlackClient(baseURL, token string) *slackClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 0 // each API call is attempted exactly once
	client.Logger = nil
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	return &slackClient{baseURL: baseURL, token: token, http: client}
}

type responseMetadata struct {
	NextCursor string `json:"next_cursor"`
}

type slackChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type channelListResponse struct {
	OK               bool             `json:"ok"`
	Error            string           `json:"error"`
	Channels         []slackChannel   `json:"channels"`
	ResponseMetadata responseMetadata `json:"response_metadata"`
}

type slackUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type userListResponse struct {
	OK               bool             `json:"ok"`
	Error            string           `json:"error"`
	Members          []slackUser      `json:"members"`
	ResponseMetadata responseMetadata `json:"response_metadata"`
}

type uploadResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	File  struct {
		Permalink string `json:"permalink"`
	} `json:"file"`
}

func (c *slackClient) get(ctx context.Context, method string, params url.Values, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", c.baseURL+"/"+method+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: status %d: %s", method, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

// lookupChannel resolves a channel name to its ID via conversations.list,
// following pagination cursors until a match or the end of the listing.
func (c *slackClient) lookupChannel(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("types", "public_channel,private_channel")
	params.Set("limit", "200")
	for {
		var page channelListResponse
		if err := c.get(ctx, "conversations.list", params, &page); err != nil {
			return "", err
		}
		if !page.OK {
			return "", fmt.Errorf("conversations.list: %s", page.Error)
		}
		for _, ch := range page.Channels {
			if ch.Name == name {
				return ch.ID, nil
			}
		}
		if page.ResponseMetadata.NextCursor == "" {
			return "", fmt.Errorf("channel %q not found", name)
		}
		params.Set("cursor", page.ResponseMetadata.NextCursor)
	}
}

// lookupUser resolves a user name to its ID via users.list.
func (c *slackClient) lookupUser(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("limit", "200")
	for {
		var page userListResponse
		if err := c.get(ctx, "users.list", params, &page); err != nil {
			return "", err
		}
		if !page.OK {
			return "", fmt.Errorf("users.list: %s", page.Error)
		}
		for _, u := range page.Members {
			if u.Name == name {
				return u.ID, nil
			}
		}
		if page.ResponseMetadata.NextCursor == "" {
			return "", fmt.Errorf("user %q not found", name)
		}
		params.Set("cursor", page.ResponseMetadata.NextCursor)
	}
}

type uploadRequest struct {
	Channel  string
	ThreadTS string
	Comment  string
	Path     string
}

type uploadResult struct {
	Permalink string
}

// upload posts the render artifact to one channel/user via files.upload.
// A response with ok=false becomes an error carrying the platform's error
// string.
func (c *slackClient) upload(ctx context.Context, up uploadRequest) (*uploadResult, error) {
	data, err := os.ReadFile(up.Path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filepath.Base(up.Path))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	fields := map[string]string{
		"channels": up.Channel,
		"filename": filepath.Base(up.Path),
	}
	if up.Comment != "" {
		fields["initial_comment"] = up.Comment
	}
	if up.ThreadTS != "" {
		fields["thread_ts"] = up.ThreadTS
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", c.baseURL+"/files.upload", body.Bytes())
	if err != nil {
		return nil, fmt.Errorf("build files.upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("files.upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("files.upload: status %d: %s", resp.StatusCode, string(respBody))
	}
	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, fmt.Errorf("decode files.upload response: %w", err)
	}
	if !ur.OK {
		return nil, fmt.Errorf("files.upload: %s", ur.Error)
	}
	return &uploadResult{Permalink: ur.File.Permalink}, nil
}
