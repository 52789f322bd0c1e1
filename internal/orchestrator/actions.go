package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"kolscheduler/internal/backend"
	"kolscheduler/internal/model"
)

// Post review statuses mirrored into the live result.
const (
	postApproved  = "approved"
	postRejected  = "rejected"
	postPublished = "published"
)

// Approve marks one generated post approved, remote first, then the held
// result entry.
func (o *Orchestrator) Approve(ctx context.Context, taskID, postID string) error {
	return o.reviewAction(taskID, postID, postApproved, func() error {
		return o.posts.Approve(ctx, postID)
	})
}

// Reject marks one generated post rejected.
func (o *Orchestrator) Reject(ctx context.Context, taskID, postID string) error {
	return o.reviewAction(taskID, postID, postRejected, func() error {
		return o.posts.Reject(ctx, postID)
	})
}

// Publish pushes one generated post live.
func (o *Orchestrator) Publish(ctx context.Context, taskID, postID string) error {
	return o.reviewAction(taskID, postID, postPublished, func() error {
		return o.posts.Publish(ctx, postID)
	})
}

func (o *Orchestrator) reviewAction(taskID, postID, status string, call func() error) error {
	if _, err := o.heldPost(taskID, postID); err != nil {
		return err
	}
	if err := call(); err != nil {
		return wrapRemote(err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if res, ok := o.results[taskID]; ok {
		if p := res.FindPost(postID); p != nil {
			p.Status = status
		}
	}
	return nil
}

// UpdateContent edits a post's title and content. The local entry is
// patched optimistically so the caller sees the edit immediately, and
// rolled back to the snapshot when the remote call refuses it.
func (o *Orchestrator) UpdateContent(ctx context.Context, taskID, postID, title, content string) error {
	post, err := o.heldPost(taskID, postID)
	if err != nil {
		return err
	}
	snapshot := post

	o.mu.Lock()
	if res, ok := o.results[taskID]; ok {
		if p := res.FindPost(postID); p != nil {
			p.Title = title
			p.Content = content
		}
	}
	o.mu.Unlock()

	if err := o.posts.UpdateContent(ctx, postID, title, content); err != nil {
		o.mu.Lock()
		if res, ok := o.results[taskID]; ok {
			if p := res.FindPost(postID); p != nil {
				p.Title = snapshot.Title
				p.Content = snapshot.Content
			}
		}
		o.mu.Unlock()
		return wrapRemote(err)
	}
	return nil
}

// FetchVersions lists alternate renderings for a post. An empty list
// means no alternates were generated, which is not an error.
func (o *Orchestrator) FetchVersions(ctx context.Context, taskID, postID string) ([]model.PostVersion, error) {
	if _, err := o.heldPost(taskID, postID); err != nil {
		return nil, err
	}
	versions, err := o.posts.ListVersions(ctx, postID)
	if err != nil {
		return nil, wrapRemote(err)
	}
	return versions, nil
}

// SelectVersion swaps the post's title and content to a chosen alternate,
// remotely then locally.
func (o *Orchestrator) SelectVersion(ctx context.Context, taskID, postID string, version model.PostVersion) error {
	if _, err := o.heldPost(taskID, postID); err != nil {
		return err
	}
	if err := o.posts.SelectVersion(ctx, postID, version.VersionID); err != nil {
		return wrapRemote(err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if res, ok := o.results[taskID]; ok {
		if p := res.FindPost(postID); p != nil {
			p.Title = version.Title
			p.Content = version.Content
		}
	}
	return nil
}

// heldPost copies the post entry out of the live result under the lock.
func (o *Orchestrator) heldPost(taskID, postID string) (model.GeneratedPost, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	res, ok := o.results[taskID]
	if !ok {
		return model.GeneratedPost{}, fmt.Errorf("%w: task %s", ErrNoResult, taskID)
	}
	p := res.FindPost(postID)
	if p == nil {
		return model.GeneratedPost{}, fmt.Errorf("%w: %s", ErrUnknownPost, postID)
	}
	return *p, nil
}

func wrapRemote(err error) error {
	var remote *backend.RemoteError
	if errors.As(err, &remote) {
		return fmt.Errorf("%w: %s", ErrRemoteRejected, remote.Message)
	}
	return err
}
