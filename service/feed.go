package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/pkg/apperr"
	"github.com/adri-yano/social-media-app/repository"
)

// FeedRequest describes a post list read. Every set filter narrows the result.
type FeedRequest struct {
	Viewer         *uuid.UUID
	AuthorID       *uuid.UUID
	AuthorUsername string
	Query          string
	// Following restricts the list to authors the viewer follows.
	Following bool
}

// FeedBuilder composes post lists from the post, user and follow stores.
type FeedBuilder interface {
	List(ctx context.Context, req FeedRequest) ([]*models.PostView, error)
}

type feedBuilder struct {
	posts   repository.PostRepository
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewFeedBuilder(posts repository.PostRepository, users repository.UserRepository, follows repository.FollowRepository) FeedBuilder {
	return &feedBuilder{posts: posts, users: users, follows: follows}
}

func (fb *feedBuilder) List(ctx context.Context, req FeedRequest) ([]*models.PostView, error) {
	if req.Following && req.Viewer == nil {
		return nil, apperr.Unauthorized("sign in to see posts from people you follow")
	}

	authorIDs, err := fb.resolveAuthors(ctx, req)
	if err != nil {
		return nil, err
	}

	posts, err := fb.posts.List(ctx, models.PostFilter{
		AuthorIDs: authorIDs,
		Search:    req.Query,
		Viewer:    req.Viewer,
		Limit:     models.MaxListRows,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// resolveAuthors turns the author filters and the following scope into one
// id set. nil means unrestricted; an empty set means nothing can match.
func (fb *feedBuilder) resolveAuthors(ctx context.Context, req FeedRequest) ([]uuid.UUID, error) {
	var authorIDs []uuid.UUID

	if req.AuthorID != nil {
		authorIDs = []uuid.UUID{*req.AuthorID}
	}

	if req.AuthorUsername != "" {
		user, err := fb.users.GetByUsername(ctx, req.AuthorUsername)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return []uuid.UUID{}, nil
		case err != nil:
			return nil, fmt.Errorf("failed to resolve author: %w", err)
		}
		authorIDs = intersect(authorIDs, []uuid.UUID{user.ID})
	}

	if req.Following {
		followingIDs, err := fb.follows.FollowingIDs(ctx, *req.Viewer)
		if err != nil {
			return nil, fmt.Errorf("failed to get following: %w", err)
		}
		authorIDs = intersect(authorIDs, followingIDs)
	}

	return authorIDs, nil
}

// intersect narrows current by next. A nil current is unrestricted.
func intersect(current, next []uuid.UUID) []uuid.UUID {
	if current == nil {
		out := make([]uuid.UUID, len(next))
		copy(out, next)
		return out
	}

	allowed := make(map[uuid.UUID]bool, len(next))
	for _, id := range next {
		allowed[id] = true
	}
	out := []uuid.UUID{}
	for _, id := range current {
		if allowed[id] {
			out = append(out, id)
		}
	}
	return out
}
