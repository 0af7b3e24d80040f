// Package readwise is a minimal client for the Readwise Reader list API.
// https://readwise.io/reader_api
package readwise

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/MrSnakeDoc/pinsync/internal/domain"
	"github.com/MrSnakeDoc/pinsync/internal/logger"
	"github.com/MrSnakeDoc/pinsync/internal/utils"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  logger.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// FetchDocuments retrieves every document page by page, in server order,
// following nextPageCursor until the server stops returning one.
//
// updatedAfter and location are optional; empty strings omit the parameter.
//
// There is no retry: a transport error aborts pagination and returns the
// documents collected so far together with the error, so the caller can
// distinguish a successful empty fetch from a failed one.
func (c *Client) FetchDocuments(ctx context.Context, updatedAfter, location string) ([]domain.Document, error) {
	var docs []domain.Document
	cursor := ""

	for {
		body, err := c.fetchPage(ctx, updatedAfter, location, cursor)
		if err != nil {
			return docs, err
		}

		results := gjson.GetBytes(body, "results")
		if results.IsArray() {
			results.ForEach(func(_, v gjson.Result) bool {
				docs = append(docs, parseDocument(v))
				return true
			})
		} else {
			// Unparseable body or missing results field: no results this
			// page, pagination still terminates below.
			c.logger.Warn("readwise response carried no results field")
		}

		cursor = gjson.GetBytes(body, "nextPageCursor").String()
		if cursor == "" {
			break
		}
	}

	return docs, nil
}

func (c *Client) fetchPage(ctx context.Context, updatedAfter, location, cursor string) ([]byte, error) {
	params := url.Values{}
	if cursor != "" {
		params.Set("pageCursor", cursor)
	}
	if updatedAfter != "" {
		params.Set("updatedAfter", updatedAfter)
	}
	if location != "" {
		params.Set("location", location)
	}

	reqURL := c.baseURL
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	c.logger.Debug("requesting readwise document page",
		logger.String("params", params.Encode()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build readwise request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("readwise request failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("readwise returned non-200 status",
			logger.Int("status", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read readwise response: %w", err)
	}
	return body, nil
}

// parseDocument maps one results entry to the domain model. Missing fields
// become empty strings; nothing here is fatal.
func parseDocument(v gjson.Result) domain.Document {
	return domain.Document{
		ID:        v.Get("id").String(),
		Title:     v.Get("title").String(),
		SourceURL: v.Get("source_url").String(),
		Category:  v.Get("category").String(),
		Location:  v.Get("location").String(),
		Tags:      parseTags(v.Get("tags")),
		Summary:   v.Get("summary").String(),
		Author:    v.Get("author").String(),
		SiteName:  v.Get("site_name").String(),
		CreatedAt: v.Get("created_at").String(),
	}
}

// parseTags accepts both shapes the API has used: an object keyed by tag name
// (the keys are the tags) and a plain array of tag names. gjson iterates in
// document order, which keeps the resulting tag list deterministic.
func parseTags(v gjson.Result) []string {
	var tags []string
	switch {
	case v.IsObject():
		v.ForEach(func(key, _ gjson.Result) bool {
			tags = append(tags, key.String())
			return true
		})
	case v.IsArray():
		v.ForEach(func(_, item gjson.Result) bool {
			if item.IsObject() {
				tags = append(tags, item.Get("name").String())
			} else {
				tags = append(tags, item.String())
			}
			return true
		})
	}
	return tags
}
