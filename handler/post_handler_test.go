package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adri-yano/social-media-app/events"
	"github.com/adri-yano/social-media-app/storage"
)

func TestCreatePost_ContentBounds(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	tests := []struct {
		name       string
		length     int
		wantStatus int
	}{
		{"empty", 0, http.StatusBadRequest},
		{"one char", 1, http.StatusCreated},
		{"max", 5000, http.StatusCreated},
		{"over max", 5001, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := alice.do(http.MethodPost, "/api/posts", map[string]string{"content": strings.Repeat("a", tt.length)})
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus == http.StatusBadRequest {
				var body errorJSON
				decode(t, rec, &body)
				assert.Contains(t, body.Details, "content")
			}
		})
	}
	assert.Equal(t, 2, env.store.Count("posts"))
}

func TestCreatePost_ReturnsAuthorAndCounts(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	post := alice.createPost("hello #world")
	assert.Equal(t, "hello #world", post.Content)
	assert.Equal(t, alice.userID, post.AuthorID)
	assert.Equal(t, "alice", post.Author.Username)
	assert.Zero(t, post.Counts.Likes)
	assert.Zero(t, post.Counts.Comments)
	assert.Nil(t, post.Image)

	assert.Equal(t, []string{events.PostCreated}, env.events.subjects())
}

// register, create a post, like it and unlike it again.
func TestLikeToggleScenario(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")

	alice := env.anonymous(t)
	rec := alice.do(http.MethodPost, "/api/auth/login", map[string]string{"identifier": "alice", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	created := alice.createPost("hello #world")

	posts := alice.listPosts("")
	require.Len(t, posts, 1)
	assert.Equal(t, created.ID, posts[0].ID)
	assert.Zero(t, posts[0].Counts.Likes)
	assert.Zero(t, posts[0].Counts.Comments)

	rec = alice.do(http.MethodPost, "/api/posts/"+created.ID+"/like", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":true}`, rec.Body.String())

	post := alice.getPost(created.ID)
	assert.Equal(t, 1, post.Counts.Likes)
	assert.True(t, post.Liked)
	assert.Equal(t, 1, env.store.Count("likes"))

	rec = alice.do(http.MethodPost, "/api/posts/"+created.ID+"/like", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":false}`, rec.Body.String())

	post = alice.getPost(created.ID)
	assert.Zero(t, post.Counts.Likes)
	assert.False(t, post.Liked)
	assert.Equal(t, 0, env.store.Count("likes"))

	assert.Equal(t, []string{events.PostCreated, events.PostLiked, events.PostLiked}, env.events.subjects())
}

func TestToggleLike_MissingPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	rec := alice.do(http.MethodPost, "/api/posts/7d4f0c2e-9b8a-4c61-8f3e-2a1b0c9d8e7f/like", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = alice.do(http.MethodPost, "/api/posts/not-a-uuid/like", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPost_NotFoundAndMalformed(t *testing.T) {
	env := newTestEnv(t)
	anon := env.anonymous(t)

	rec := anon.do(http.MethodGet, "/api/posts/7d4f0c2e-9b8a-4c61-8f3e-2a1b0c9d8e7f", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = anon.do(http.MethodGet, "/api/posts/123", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPosts_CappedAndStableOrder(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	for i := 0; i < 55; i++ {
		alice.createPost(fmt.Sprintf("post %d", i))
	}

	first := alice.listPosts("")
	require.Len(t, first, 50)
	assert.Equal(t, "post 54", first[0].Content)
	assert.Equal(t, "post 5", first[49].Content)

	second := alice.listPosts("")
	assert.Equal(t, first, second)
}

func TestListPosts_Filters(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	alice.createPost("Hello #World")
	alice.createPost("just alice")
	bob.createPost("bob says hello")

	anon := env.anonymous(t)

	assert.Len(t, anon.listPosts(""), 3)
	assert.Len(t, anon.listPosts("?authorId="+alice.userID), 2)
	assert.Len(t, anon.listPosts("?authorUsername=bob"), 1)
	assert.Len(t, anon.listPosts("?authorUsername=nobody"), 0)
	assert.Len(t, anon.listPosts("?q=HELLO"), 2)
	assert.Len(t, anon.listPosts("?q=%23world"), 1)
	assert.Len(t, anon.listPosts("?q=hello&authorUsername=bob"), 1)
	assert.Len(t, anon.listPosts("?authorId="+alice.userID+"&authorUsername=bob"), 0)

	rec := anon.do(http.MethodGet, "/api/posts?authorId=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPosts_FollowingFeed(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	bob.createPost("from bob")

	t.Run("anonymous", func(t *testing.T) {
		rec := env.anonymous(t).do(http.MethodGet, "/api/posts?feed=following", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("following nobody", func(t *testing.T) {
		rec := alice.do(http.MethodGet, "/api/posts?feed=following", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"posts":[]}`, rec.Body.String())
	})
}

func TestUpdatePost_PartialJSON(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	rec := alice.do(http.MethodPost, "/api/posts", map[string]string{"content": "original", "image": "https://cdn.test/a.png"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Post postJSON `json:"post"`
	}
	decode(t, rec, &created)

	rec = alice.do(http.MethodPatch, "/api/posts/"+created.Post.ID, map[string]string{"content": "edited"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post := alice.getPost(created.Post.ID)
	assert.Equal(t, "edited", post.Content)
	require.NotNil(t, post.Image)
	assert.Equal(t, "https://cdn.test/a.png", *post.Image)

	rec = alice.do(http.MethodPatch, "/api/posts/"+created.Post.ID, map[string]interface{}{"image": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post = alice.getPost(created.Post.ID)
	assert.Equal(t, "edited", post.Content)
	assert.Nil(t, post.Image)

	rec = alice.do(http.MethodPatch, "/api/posts/"+created.Post.ID, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePost_Multipart(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	created := alice.createPost("original")
	path := "/api/posts/" + created.ID

	rec := alice.doMultipart(http.MethodPatch, path, nil, map[string][]byte{"image": []byte("\x89PNG\r\n\x1a\nfake")})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, env.uploader.objects, 1)
	assert.Equal(t, storage.ScopePosts, env.uploader.objects[0].Scope)
	assert.Equal(t, alice.userID, env.uploader.objects[0].OwnerID.String())
	assert.Equal(t, "image/png", env.uploader.objects[0].ContentType)

	post := alice.getPost(created.ID)
	assert.Equal(t, "original", post.Content)
	require.NotNil(t, post.Image)
	assert.True(t, strings.HasPrefix(*post.Image, "https://cdn.test/posts/"+alice.userID+"-"))

	rec = alice.doMultipart(http.MethodPatch, path, map[string]string{"content": "with text"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post = alice.getPost(created.ID)
	assert.Equal(t, "with text", post.Content)
	assert.NotNil(t, post.Image)

	rec = alice.doMultipart(http.MethodPatch, path, map[string]string{"image": "null"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	post = alice.getPost(created.ID)
	assert.Equal(t, "with text", post.Content)
	assert.Nil(t, post.Image)
}

func TestUpdatePost_InvalidContentSkipsUpload(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	created := alice.createPost("original")

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"over max", strings.Repeat("p", 5001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := alice.doMultipart(http.MethodPatch, "/api/posts/"+created.ID,
				map[string]string{"content": tt.content},
				map[string][]byte{"image": []byte("\x89PNG\r\n\x1a\nfake")})
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var body errorJSON
			decode(t, rec, &body)
			assert.Contains(t, body.Details, "content")
		})
	}

	assert.Empty(t, env.uploader.objects)
	post := alice.getPost(created.ID)
	assert.Equal(t, "original", post.Content)
	assert.Nil(t, post.Image)
}

func TestUpdatePost_UploadFailure(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	created := alice.createPost("original")
	env.uploader.err = fmt.Errorf("%w: bucket missing", storage.ErrUploadFailed)

	rec := alice.doMultipart(http.MethodPatch, "/api/posts/"+created.ID, nil, map[string][]byte{"image": []byte("data")})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body errorJSON
	decode(t, rec, &body)
	assert.Equal(t, "upload failed", body.Error)
	assert.NotContains(t, rec.Body.String(), "bucket missing")
}

func TestUpdatePost_ForbiddenLeavesPostUnchanged(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	mallory := env.register(t, "mallory")
	created := alice.createPost("mine")

	rec := mallory.do(http.MethodPatch, "/api/posts/"+created.ID, map[string]string{"content": "hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = mallory.do(http.MethodPatch, "/api/posts/"+created.ID, map[string]string{"content": ""})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = mallory.do(http.MethodDelete, "/api/posts/"+created.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	post := alice.getPost(created.ID)
	assert.Equal(t, "mine", post.Content)
}

func TestUpdatePost_MissingPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	rec := alice.do(http.MethodPatch, "/api/posts/7d4f0c2e-9b8a-4c61-8f3e-2a1b0c9d8e7f", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePost_RemovesLikesAndComments(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	created := alice.createPost("short lived")

	require.Equal(t, http.StatusOK, bob.do(http.MethodPost, "/api/posts/"+created.ID+"/like", nil).Code)
	require.Equal(t, http.StatusCreated, bob.do(http.MethodPost, "/api/posts/"+created.ID+"/comments", map[string]string{"content": "nice"}).Code)

	rec := alice.do(http.MethodDelete, "/api/posts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodGet, "/api/posts/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, bob.do(http.MethodGet, "/api/posts/"+created.ID+"/comments", nil).Code)
	assert.Equal(t, 0, env.store.Count("likes"))
	assert.Equal(t, 0, env.store.Count("comments"))

	rec = alice.do(http.MethodDelete, "/api/posts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Contains(t, env.events.subjects(), events.PostDeleted)
}

func TestUploadPostImage(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	rec := alice.doMultipart(http.MethodPost, "/api/posts/image", nil, map[string][]byte{"file": []byte("GIF89a")})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]string
	decode(t, rec, &body)
	assert.True(t, strings.HasPrefix(body["url"], "https://cdn.test/posts/"+alice.userID+"-"))
	assert.True(t, strings.HasSuffix(body["url"], ".png"))

	rec = alice.doMultipart(http.MethodPost, "/api/posts/image", map[string]string{"other": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.uploader.err = errors.New("storage offline")
	rec = alice.doMultipart(http.MethodPost, "/api/posts/image", nil, map[string][]byte{"file": []byte("GIF89a")})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUploadPostImage_TooLarge(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	big := make([]byte, 3<<20)
	rec := alice.doMultipart(http.MethodPost, "/api/posts/image", nil, map[string][]byte{"file": big})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.uploader.objects)
}
