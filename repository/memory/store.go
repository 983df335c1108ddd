// Package memory implements the repository interfaces in process memory with
// the same uniqueness, foreign key and cascade behaviour as the PostgreSQL
// schema. It backs handler tests and local runs without a database.
package memory

import (
	"bytes"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/repository"
)

type pair struct {
	left, right uuid.UUID
}

// Store holds every table behind one lock.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[uuid.UUID]*models.User
	posts    map[uuid.UUID]*models.Post
	comments map[uuid.UUID]*models.Comment
	likes    map[pair]time.Time
	follows  map[pair]time.Time
}

func New() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[uuid.UUID]*models.User),
		posts:    make(map[uuid.UUID]*models.Post),
		comments: make(map[uuid.UUID]*models.Comment),
		likes:    make(map[pair]time.Time),
		follows:  make(map[pair]time.Time),
	}
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() repository.UserRepository       { return &userRepository{s} }
func (s *Store) Posts() repository.PostRepository       { return &postRepository{s} }
func (s *Store) Comments() repository.CommentRepository { return &commentRepository{s} }
func (s *Store) Likes() repository.LikeRepository       { return &likeRepository{s} }
func (s *Store) Follows() repository.FollowRepository   { return &followRepository{s} }

// Count returns the number of rows in table, for assertions in tests.
func (s *Store) Count(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch table {
	case "users":
		return len(s.users)
	case "posts":
		return len(s.posts)
	case "comments":
		return len(s.comments)
	case "likes":
		return len(s.likes)
	case "follows":
		return len(s.follows)
	}
	return 0
}

// newerFirst orders by (created_at DESC, id DESC).
func newerFirst(aTime time.Time, aID uuid.UUID, bTime time.Time, bID uuid.UUID) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return bytes.Compare(aID[:], bID[:]) > 0
}

// olderFirst orders by (created_at ASC, id ASC).
func olderFirst(aTime time.Time, aID uuid.UUID, bTime time.Time, bID uuid.UUID) bool {
	if !aTime.Equal(bTime) {
		return aTime.Before(bTime)
	}
	return bytes.Compare(aID[:], bID[:]) < 0
}

func (s *Store) author(id uuid.UUID) models.Author {
	if u, ok := s.users[id]; ok {
		return u.Summary()
	}
	return models.Author{ID: id}
}

// deletePostLocked removes a post with its likes and comments.
func (s *Store) deletePostLocked(id uuid.UUID) {
	delete(s.posts, id)
	for p := range s.likes {
		if p.left == id {
			delete(s.likes, p)
		}
	}
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
}

// deleteCommentLocked removes a comment and every descendant.
func (s *Store) deleteCommentLocked(id uuid.UUID) {
	delete(s.comments, id)
	for cid, c := range s.comments {
		if c.ParentCommentID != nil && *c.ParentCommentID == id {
			s.deleteCommentLocked(cid)
		}
	}
}

func sortAuthorsByPairTime(authors []*models.Author, times map[uuid.UUID]time.Time) {
	sort.Slice(authors, func(i, j int) bool {
		return newerFirst(times[authors[i].ID], authors[i].ID, times[authors[j].ID], authors[j].ID)
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
