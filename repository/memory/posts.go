package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/repository"
)

type postRepository struct {
	s *Store
}

func (r *postRepository) Create(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[post.AuthorID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.posts[post.ID]; ok {
		return repository.ErrConflict
	}

	now := r.s.now()
	post.CreatedAt, post.UpdatedAt = now, now
	stored := *post
	stored.Image = cloneString(post.Image)
	r.s.posts[post.ID] = &stored
	return nil
}

func (r *postRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *postRepository) GetView(_ context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.PostView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.s.postViewLocked(p, viewer), nil
}

func (r *postRepository) List(_ context.Context, filter models.PostFilter) ([]*models.PostView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var authors map[uuid.UUID]bool
	if filter.AuthorIDs != nil {
		authors = make(map[uuid.UUID]bool, len(filter.AuthorIDs))
		for _, id := range filter.AuthorIDs {
			authors[id] = true
		}
	}
	search := strings.TrimSpace(filter.Search)

	matched := []*models.Post{}
	for _, p := range r.s.posts {
		if authors != nil && !authors[p.AuthorID] {
			continue
		}
		if search != "" && !containsFold(p.Content, search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return newerFirst(matched[i].CreatedAt, matched[i].ID, matched[j].CreatedAt, matched[j].ID)
	})

	limit := filter.Limit
	if limit <= 0 || limit > models.MaxListRows {
		limit = models.MaxListRows
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	views := make([]*models.PostView, 0, len(matched))
	for _, p := range matched {
		views = append(views, r.s.postViewLocked(p, filter.Viewer))
	}
	return views, nil
}

func (r *postRepository) Update(_ context.Context, id uuid.UUID, input *models.UpdatePostInput) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if input.Content != nil {
		p.Content = *input.Content
	}
	if input.Image.Set {
		p.Image = input.Image.Ptr()
	}
	p.UpdatedAt = r.s.now()

	out := *p
	return &out, nil
}

func (r *postRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deletePostLocked(id)
	return nil
}

func (s *Store) postViewLocked(p *models.Post, viewer *uuid.UUID) *models.PostView {
	view := &models.PostView{Post: *p, Author: s.author(p.AuthorID)}
	view.Image = cloneString(p.Image)

	for l := range s.likes {
		if l.left == p.ID {
			view.Counts.Likes++
			if viewer != nil && l.right == *viewer {
				view.Liked = true
			}
		}
	}
	for _, c := range s.comments {
		if c.PostID == p.ID {
			view.Counts.Comments++
		}
	}
	return view
}
