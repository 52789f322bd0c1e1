package backend

import (
	"context"
	"fmt"
	"time"

	"kolscheduler/internal/model"
)

// PostClient drives the post-lifecycle API for generated items.
type PostClient struct {
	client
}

func NewPostClient(baseURL, apiKey, proxyURL string, timeout time.Duration) *PostClient {
	return &PostClient{client: newClient(baseURL, apiKey, proxyURL, timeout)}
}

func (c *PostClient) Approve(ctx context.Context, postID string) error {
	return c.doJSON(ctx, "POST", fmt.Sprintf("/posts/%s/approve", postID), nil, nil, nil)
}

func (c *PostClient) Reject(ctx context.Context, postID string) error {
	return c.doJSON(ctx, "POST", fmt.Sprintf("/posts/%s/reject", postID), nil, nil, nil)
}

func (c *PostClient) Publish(ctx context.Context, postID string) error {
	return c.doJSON(ctx, "POST", fmt.Sprintf("/posts/%s/publish", postID), nil, nil, nil)
}

func (c *PostClient) UpdateContent(ctx context.Context, postID, title, content string) error {
	body := map[string]string{"title": title, "content": content}
	return c.doJSON(ctx, "PUT", fmt.Sprintf("/posts/%s/content", postID), body, nil, nil)
}

// ListVersions returns the alternate renderings for a post. An empty list
// is a normal outcome: not every run generates alternates.
func (c *PostClient) ListVersions(ctx context.Context, postID string) ([]model.PostVersion, error) {
	var reply struct {
		Versions []model.PostVersion `json:"versions"`
	}
	if err := c.doJSON(ctx, "GET", fmt.Sprintf("/posts/%s/versions", postID), nil, &reply, nil); err != nil {
		return nil, err
	}
	return reply.Versions, nil
}

func (c *PostClient) SelectVersion(ctx context.Context, postID, versionID string) error {
	body := map[string]string{"version_id": versionID}
	return c.doJSON(ctx, "POST", fmt.Sprintf("/posts/%s/versions/select", postID), body, nil, nil)
}
