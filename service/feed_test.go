package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/pkg/apperr"
	"github.com/adri-yano/social-media-app/repository/memory"
)

type fixture struct {
	store *memory.Store
	feed  FeedBuilder
	users map[string]*models.User
}

func newFixture(t *testing.T, usernames ...string) *fixture {
	t.Helper()
	store := memory.New()
	f := &fixture{
		store: store,
		feed:  NewFeedBuilder(store.Posts(), store.Users(), store.Follows()),
		users: map[string]*models.User{},
	}
	for _, name := range usernames {
		u := &models.User{ID: uuid.New(), Username: name, Email: name + "@example.com", PasswordHash: "x"}
		require.NoError(t, store.Users().Create(context.Background(), u))
		f.users[name] = u
	}
	return f
}

func (f *fixture) post(t *testing.T, author, content string) *models.Post {
	t.Helper()
	p := &models.Post{ID: uuid.New(), Content: content, AuthorID: f.users[author].ID}
	require.NoError(t, f.store.Posts().Create(context.Background(), p))
	return p
}

func (f *fixture) id(name string) *uuid.UUID {
	id := f.users[name].ID
	return &id
}

func contents(posts []*models.PostView) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Content)
	}
	return out
}

func TestFeed_FollowingRequiresViewer(t *testing.T) {
	f := newFixture(t)
	_, err := f.feed.List(context.Background(), FeedRequest{Following: true})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestFeed_FollowingNobodyIsEmpty(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	f.post(t, "bob", "hi")

	posts, err := f.feed.List(context.Background(), FeedRequest{Viewer: f.id("alice"), Following: true})
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestFeed_FiltersCombine(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.store.SetClock(func() time.Time { clock = clock.Add(time.Second); return clock })

	f.post(t, "bob", "bob says Hello")
	f.post(t, "bob", "bob again")
	f.post(t, "carol", "carol says hello")

	_, err := f.store.Follows().Toggle(ctx, f.users["alice"].ID, f.users["bob"].ID)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  FeedRequest
		want []string
	}{
		{"global newest first", FeedRequest{}, []string{"carol says hello", "bob again", "bob says Hello"}},
		{"keyword case-insensitive", FeedRequest{Query: "HELLO"}, []string{"carol says hello", "bob says Hello"}},
		{"author by id", FeedRequest{AuthorID: f.id("carol")}, []string{"carol says hello"}},
		{"author by username", FeedRequest{AuthorUsername: "bob"}, []string{"bob again", "bob says Hello"}},
		{"unknown username", FeedRequest{AuthorUsername: "nobody"}, []string{}},
		{"following", FeedRequest{Viewer: f.id("alice"), Following: true}, []string{"bob again", "bob says Hello"}},
		{"following and keyword", FeedRequest{Viewer: f.id("alice"), Following: true, Query: "hello"}, []string{"bob says Hello"}},
		{"following and other author", FeedRequest{Viewer: f.id("alice"), Following: true, AuthorID: f.id("carol")}, []string{}},
		{"id and username disagree", FeedRequest{AuthorID: f.id("carol"), AuthorUsername: "bob"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := f.feed.List(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, contents(posts))
		})
	}
}

func TestIntersect(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{a, b}, intersect(nil, []uuid.UUID{a, b}))
	assert.Equal(t, []uuid.UUID{b}, intersect([]uuid.UUID{a, b}, []uuid.UUID{b, c}))
	assert.Empty(t, intersect([]uuid.UUID{a}, []uuid.UUID{}))
	assert.NotNil(t, intersect(nil, nil))
}
