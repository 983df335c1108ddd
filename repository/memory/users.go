package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/repository"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return &repository.ConflictError{Field: "username"}
		}
		if strings.EqualFold(u.Email, user.Email) {
			return &repository.ConflictError{Field: "email"}
		}
	}

	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u := r.s.findUser(func(u *models.User) bool { return u.Username == username })
	if u == nil {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *userRepository) GetByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u := r.s.findUser(func(u *models.User) bool {
		return strings.EqualFold(u.Email, identifier) || u.Username == identifier
	})
	if u == nil {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *userRepository) GetProfile(_ context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.s.profileLocked(u, viewer), nil
}

func (r *userRepository) GetProfileByUsername(_ context.Context, username string, viewer *uuid.UUID) (*models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u := r.s.findUser(func(u *models.User) bool { return u.Username == username })
	if u == nil {
		return nil, repository.ErrNotFound
	}
	return r.s.profileLocked(u, viewer), nil
}

func (r *userRepository) Update(_ context.Context, id uuid.UUID, input *models.UpdateUserInput) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if input.Name.Set {
		u.Name = input.Name.Ptr()
	}
	if input.Bio.Set {
		u.Bio = input.Bio.Ptr()
	}
	if input.Avatar.Set {
		u.Avatar = input.Avatar.Ptr()
	}
	u.UpdatedAt = r.s.now()

	out := *u
	return &out, nil
}

func (s *Store) findUser(match func(*models.User) bool) *models.User {
	for _, u := range s.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func (s *Store) profileLocked(u *models.User, viewer *uuid.UUID) *models.Profile {
	p := &models.Profile{User: *u}
	p.PasswordHash = ""
	p.Name, p.Bio, p.Avatar = cloneString(u.Name), cloneString(u.Bio), cloneString(u.Avatar)

	for f := range s.follows {
		if f.right == u.ID {
			p.Counts.Followers++
		}
		if f.left == u.ID {
			p.Counts.Following++
		}
	}
	for _, post := range s.posts {
		if post.AuthorID == u.ID {
			p.Counts.Posts++
		}
	}
	if viewer != nil {
		_, p.IsFollowing = s.follows[pair{*viewer, u.ID}]
	}
	return p
}
