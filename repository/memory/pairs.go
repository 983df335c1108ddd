package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/repository"
)

// toggleLocked flips membership of p in set.
func (s *Store) toggleLocked(set map[pair]time.Time, p pair) bool {
	if _, ok := set[p]; ok {
		delete(set, p)
		return false
	}
	set[p] = s.now()
	return true
}

type likeRepository struct {
	s *Store
}

func (r *likeRepository) Toggle(_ context.Context, postID, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := pair{postID, userID}
	if _, ok := r.s.likes[p]; !ok {
		if _, ok := r.s.posts[postID]; !ok {
			return false, repository.ErrNotFound
		}
		if _, ok := r.s.users[userID]; !ok {
			return false, repository.ErrNotFound
		}
	}
	return r.s.toggleLocked(r.s.likes, p), nil
}

type followRepository struct {
	s *Store
}

func (r *followRepository) Toggle(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if followerID == followingID {
		return false, repository.ErrInvalid
	}

	p := pair{followerID, followingID}
	if _, ok := r.s.follows[p]; !ok {
		if _, ok := r.s.users[followerID]; !ok {
			return false, repository.ErrNotFound
		}
		if _, ok := r.s.users[followingID]; !ok {
			return false, repository.ErrNotFound
		}
	}
	return r.s.toggleLocked(r.s.follows, p), nil
}

func (r *followRepository) ListFollowers(_ context.Context, userID uuid.UUID) ([]*models.Author, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.listFollowLocked(func(p pair) (uuid.UUID, bool) { return p.left, p.right == userID }), nil
}

func (r *followRepository) ListFollowing(_ context.Context, userID uuid.UUID) ([]*models.Author, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.listFollowLocked(func(p pair) (uuid.UUID, bool) { return p.right, p.left == userID }), nil
}

func (r *followRepository) FollowingIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []uuid.UUID{}
	for p := range r.s.follows {
		if p.left == userID {
			ids = append(ids, p.right)
		}
	}
	return ids, nil
}

func (s *Store) listFollowLocked(pick func(pair) (uuid.UUID, bool)) []*models.Author {
	authors := []*models.Author{}
	times := make(map[uuid.UUID]time.Time)
	for p, at := range s.follows {
		id, ok := pick(p)
		if !ok {
			continue
		}
		a := s.author(id)
		authors = append(authors, &a)
		times[id] = at
	}
	sortAuthorsByPairTime(authors, times)
	if len(authors) > models.MaxListRows {
		authors = authors[:models.MaxListRows]
	}
	return authors
}
