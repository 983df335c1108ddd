package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/repository"
)

type commentRepository struct {
	s *Store
}

func (r *commentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[comment.PostID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.users[comment.AuthorID]; !ok {
		return repository.ErrNotFound
	}
	if comment.ParentCommentID != nil {
		if _, ok := r.s.comments[*comment.ParentCommentID]; !ok {
			return repository.ErrNotFound
		}
	}

	now := r.s.now()
	comment.CreatedAt, comment.UpdatedAt = now, now
	stored := *comment
	r.s.comments[comment.ID] = &stored
	return nil
}

func (r *commentRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *commentRepository) GetView(_ context.Context, id uuid.UUID) (*models.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.CommentView{Comment: *c, Author: r.s.author(c.AuthorID)}, nil
}

func (r *commentRepository) ListByPost(_ context.Context, postID uuid.UUID) ([]*models.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var topLevel, replies []*models.CommentView
	for _, c := range r.s.comments {
		if c.PostID != postID {
			continue
		}
		view := &models.CommentView{Comment: *c, Author: r.s.author(c.AuthorID)}
		if c.ParentCommentID == nil {
			topLevel = append(topLevel, view)
		} else {
			replies = append(replies, view)
		}
	}

	byAge := func(views []*models.CommentView) {
		sort.Slice(views, func(i, j int) bool {
			return olderFirst(views[i].CreatedAt, views[i].ID, views[j].CreatedAt, views[j].ID)
		})
	}
	byAge(topLevel)
	byAge(replies)

	if len(topLevel) > models.MaxListRows {
		topLevel = topLevel[:models.MaxListRows]
	}

	parents := make(map[uuid.UUID]*models.CommentView, len(topLevel))
	for _, c := range topLevel {
		c.Replies = []*models.CommentView{}
		parents[c.ID] = c
	}
	for _, reply := range replies {
		if parent, ok := parents[*reply.ParentCommentID]; ok {
			parent.Replies = append(parent.Replies, reply)
		}
	}

	if topLevel == nil {
		topLevel = []*models.CommentView{}
	}
	return topLevel, nil
}

func (r *commentRepository) Update(_ context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = r.s.now()

	out := *c
	return &out, nil
}

func (r *commentRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deleteCommentLocked(id)
	return nil
}
