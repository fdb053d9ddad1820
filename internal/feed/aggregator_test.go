package feed

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/lumagram/backend/internal/cache"
	"github.com/lumagram/backend/internal/errs"
	"github.com/lumagram/backend/internal/models"
	"github.com/lumagram/backend/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- in-memory fakes -------------------------------------------------------

type fakePostStore struct {
	posts []models.Post
	err   error
}

func (f *fakePostStore) CreatePost(_ context.Context, post *models.Post) error {
	if f.err != nil {
		return f.err
	}
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	f.posts = append(f.posts, *post)
	return nil
}

func (f *fakePostStore) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.posts {
		if p.ID.Hex() == id {
			post := p
			return &post, nil
		}
	}
	return nil, errs.NotFound
}

func (f *fakePostStore) GetPostsPage(_ context.Context, skip, limit int64) ([]models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	sorted := make([]models.Post, len(f.posts))
	copy(sorted, f.posts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if skip >= int64(len(sorted)) {
		return nil, nil
	}
	end := skip + limit
	if end > int64(len(sorted)) {
		end = int64(len(sorted))
	}
	return sorted[skip:end], nil
}

func (f *fakePostStore) GetPostsByAuthorID(_ context.Context, authorID uint, _, _ int64) ([]models.Post, error) {
	var out []models.Post
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostStore) CountPostsByAuthorID(_ context.Context, authorID uint) (int64, error) {
	var n int64
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (f *fakePostStore) DeletePost(_ context.Context, id string) error {
	for i, p := range f.posts {
		if p.ID.Hex() == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return errs.NotFound
}

type fakeProfileStore struct {
	profiles map[uint]models.Profile
	err      error
}

func (f *fakeProfileStore) CreateProfile(p *models.Profile) error { return nil }

func (f *fakeProfileStore) GetProfileByID(id uint) (*models.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return &p, nil
	}
	return nil, errs.NotFound
}

func (f *fakeProfileStore) GetProfileByUsername(string) (*models.Profile, error) {
	return nil, errs.NotFound
}

func (f *fakeProfileStore) GetProfileByFirebaseUID(string) (*models.Profile, error) {
	return nil, errs.NotFound
}

func (f *fakeProfileStore) GetProfilesByIDs(ids []uint) ([]models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Profile
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfileStore) UpdateProfile(*models.Profile) error { return nil }

func (f *fakeProfileStore) SearchProfiles(string, int) ([]models.Profile, error) {
	return nil, nil
}

type fakeLikeStore struct {
	likes    []models.Like
	countErr error
}

func (f *fakeLikeStore) CreateLike(like *models.Like) error {
	for _, l := range f.likes {
		if l.PostID == like.PostID && l.UserID == like.UserID {
			return errs.Duplicate
		}
	}
	f.likes = append(f.likes, *like)
	return nil
}

func (f *fakeLikeStore) DeleteLike(postID string, userID uint) error {
	for i, l := range f.likes {
		if l.PostID == postID && l.UserID == userID {
			f.likes = append(f.likes[:i], f.likes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeLikeStore) HasUserLikedPost(postID string, userID uint) (bool, error) {
	for _, l := range f.likes {
		if l.PostID == postID && l.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLikeStore) CountByPostIDs(postIDs []string) (map[string]int64, error) {
	if f.countErr != nil {
		return nil, f.countErr
	}
	wanted := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	counts := make(map[string]int64)
	for _, l := range f.likes {
		if wanted[l.PostID] {
			counts[l.PostID]++
		}
	}
	return counts, nil
}

func (f *fakeLikeStore) LikedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	wanted := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	liked := make(map[string]bool)
	for _, l := range f.likes {
		if l.UserID == userID && wanted[l.PostID] {
			liked[l.PostID] = true
		}
	}
	return liked, nil
}

type fakeCommentStore struct {
	comments []models.Comment
	countErr error
}

func (f *fakeCommentStore) CreateComment(c *models.Comment) error {
	f.comments = append(f.comments, *c)
	return nil
}

func (f *fakeCommentStore) GetCommentByID(uint) (*models.Comment, error) {
	return nil, errs.NotFound
}

func (f *fakeCommentStore) GetCommentsByPostID(postID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentStore) CountByPostIDs(postIDs []string) (map[string]int64, error) {
	if f.countErr != nil {
		return nil, f.countErr
	}
	wanted := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	counts := make(map[string]int64)
	for _, c := range f.comments {
		if wanted[c.PostID] {
			counts[c.PostID]++
		}
	}
	return counts, nil
}

func (f *fakeCommentStore) DeleteComment(uint) error { return nil }

type fakeSaveStore struct {
	saves []models.SavedPost
}

func (f *fakeSaveStore) CreateSavedPost(s *models.SavedPost) error {
	for _, existing := range f.saves {
		if existing.PostID == s.PostID && existing.UserID == s.UserID {
			return errs.Duplicate
		}
	}
	f.saves = append(f.saves, *s)
	return nil
}

func (f *fakeSaveStore) DeleteSavedPost(postID string, userID uint) error {
	for i, s := range f.saves {
		if s.PostID == postID && s.UserID == userID {
			f.saves = append(f.saves[:i], f.saves[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeSaveStore) SavedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	wanted := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	saved := make(map[string]bool)
	for _, s := range f.saves {
		if s.UserID == userID && wanted[s.PostID] {
			saved[s.PostID] = true
		}
	}
	return saved, nil
}

type recordingSink struct {
	events []notify.Event
}

func (r *recordingSink) Notify(_ context.Context, e notify.Event) {
	r.events = append(r.events, e)
}

// --- fixtures --------------------------------------------------------------

type fixture struct {
	posts      *fakePostStore
	profiles   *fakeProfileStore
	likes      *fakeLikeStore
	comments   *fakeCommentStore
	saves      *fakeSaveStore
	sink       *recordingSink
	cache      *cache.QueryCache
	aggregator *Aggregator
}

func newFixture() *fixture {
	f := &fixture{
		posts:    &fakePostStore{},
		profiles: &fakeProfileStore{profiles: make(map[uint]models.Profile)},
		likes:    &fakeLikeStore{},
		comments: &fakeCommentStore{},
		saves:    &fakeSaveStore{},
		sink:     &recordingSink{},
		cache:    cache.New(),
	}
	f.aggregator = NewAggregator(f.posts, f.profiles, f.likes, f.comments, f.saves, f.cache, f.sink)
	return f
}

func (f *fixture) addProfile(id uint, username string) {
	f.profiles.profiles[id] = models.Profile{ID: id, Username: username}
}

func (f *fixture) addPost(authorID uint, caption string, createdAt time.Time) models.Post {
	post := models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		MediaURL:  fmt.Sprintf("https://cdn.example.com/%s.jpg", caption),
		Caption:   caption,
		CreatedAt: createdAt,
	}
	f.posts.posts = append(f.posts.posts, post)
	return post
}

func uintPtr(v uint) *uint { return &v }

// --- tests -----------------------------------------------------------------

func TestGetPagePagination(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		f.addPost(1, fmt.Sprintf("post-%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := f.aggregator.GetPage(context.Background(), nil, 0, 5)
	require.NoError(t, err)
	require.Len(t, first.Posts, 5)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, int64(5), *first.NextCursor)

	second, err := f.aggregator.GetPage(context.Background(), nil, *first.NextCursor, 5)
	require.NoError(t, err)
	require.Len(t, second.Posts, 2)
	assert.Nil(t, second.NextCursor)

	// No duplicates across sequentially fetched pages, and strictly
	// descending creation order.
	seen := make(map[string]bool)
	var all []EnrichedPost
	all = append(all, first.Posts...)
	all = append(all, second.Posts...)
	for i, p := range all {
		assert.False(t, seen[p.ID.Hex()], "duplicate post across pages")
		seen[p.ID.Hex()] = true
		if i > 0 {
			assert.True(t, all[i-1].CreatedAt.After(p.CreatedAt))
		}
	}
}

func TestGetPageEmpty(t *testing.T) {
	f := newFixture()

	page, err := f.aggregator.GetPage(context.Background(), nil, 0, 5)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Nil(t, page.NextCursor)
}

func TestGetPageEnrichment(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	f.addProfile(2, "bo")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	post := f.addPost(1, "sunset", now)
	other := f.addPost(2, "coffee", now.Add(time.Minute))

	pid := post.ID.Hex()
	f.likes.likes = []models.Like{
		{PostID: pid, UserID: 2},
		{PostID: pid, UserID: 3},
	}
	f.comments.comments = []models.Comment{
		{PostID: pid, UserID: 2, Content: "nice"},
	}
	f.saves.saves = []models.SavedPost{{PostID: pid, UserID: 2}}

	page, err := f.aggregator.GetPage(context.Background(), uintPtr(2), 0, 5)
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)

	// Newest first: other, then post.
	assert.Equal(t, other.ID, page.Posts[0].ID)
	enriched := page.Posts[1]
	assert.Equal(t, int64(2), enriched.LikesCount)
	assert.Equal(t, int64(1), enriched.CommentsCount)
	assert.True(t, enriched.IsLiked)
	assert.True(t, enriched.IsSaved)
	require.True(t, enriched.Author.Known)
	assert.Equal(t, "ana", enriched.Author.Profile.Username)

	assert.Equal(t, int64(0), page.Posts[0].LikesCount)
	assert.False(t, page.Posts[0].IsLiked)
}

func TestGetPageAnonymousViewer(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	post := f.addPost(1, "sunset", time.Now())
	f.likes.likes = []models.Like{{PostID: post.ID.Hex(), UserID: 2}}

	page, err := f.aggregator.GetPage(context.Background(), nil, 0, 5)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, int64(1), page.Posts[0].LikesCount)
	assert.False(t, page.Posts[0].IsLiked)
	assert.False(t, page.Posts[0].IsSaved)
}

func TestGetPageUnknownAuthor(t *testing.T) {
	f := newFixture()
	// Author 9 has no profile row.
	f.addPost(9, "orphan", time.Now())

	page, err := f.aggregator.GetPage(context.Background(), nil, 0, 5)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.False(t, page.Posts[0].Author.Known)
	assert.Equal(t, "unknown", page.Posts[0].Author.Profile.Username)
}

func TestGetPageReadFailureAbortsPage(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	f.addPost(1, "sunset", time.Now())
	f.likes.countErr = fmt.Errorf("connection reset")

	_, err := f.aggregator.GetPage(context.Background(), nil, 0, 5)
	require.Error(t, err)
	assert.True(t, errs.IsFetchFailure(err))
}

func TestLikePostIdempotent(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	f.addProfile(2, "bo")
	post := f.addPost(1, "sunset", time.Now())
	pid := post.ID.Hex()

	require.NoError(t, f.aggregator.LikePost(context.Background(), pid, 2))
	require.NoError(t, f.aggregator.LikePost(context.Background(), pid, 2))

	assert.Len(t, f.likes.likes, 1)
	// Exactly one notification for the author, not one per attempt.
	require.Len(t, f.sink.events, 1)
	assert.Equal(t, models.NotificationLike, f.sink.events[0].Type)
	assert.Equal(t, uint(1), f.sink.events[0].RecipientID)
	assert.Equal(t, uint(2), f.sink.events[0].ActorID)
}

func TestLikeOwnPostSkipsNotification(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	post := f.addPost(1, "sunset", time.Now())

	require.NoError(t, f.aggregator.LikePost(context.Background(), post.ID.Hex(), 1))
	assert.Len(t, f.likes.likes, 1)
	assert.Empty(t, f.sink.events)
}

func TestLikeThenFetchReflectsState(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	f.addProfile(2, "bo")
	post := f.addPost(1, "sunset", time.Now())
	pid := post.ID.Hex()

	before, err := f.aggregator.GetPage(context.Background(), uintPtr(2), 0, 5)
	require.NoError(t, err)
	assert.False(t, before.Posts[0].IsLiked)

	require.NoError(t, f.aggregator.LikePost(context.Background(), pid, 2))

	after, err := f.aggregator.GetPage(context.Background(), uintPtr(2), 0, 5)
	require.NoError(t, err)
	assert.True(t, after.Posts[0].IsLiked)
	assert.Equal(t, int64(1), after.Posts[0].LikesCount)
}

func TestUnlikeNotLikedIsNoop(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	post := f.addPost(1, "sunset", time.Now())

	require.NoError(t, f.aggregator.UnlikePost(context.Background(), post.ID.Hex(), 2))
	assert.Empty(t, f.likes.likes)
}

func TestGetPageServedFromCacheUntilInvalidated(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	post := f.addPost(1, "sunset", time.Now())

	page, err := f.aggregator.GetPage(context.Background(), nil, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Posts[0].LikesCount)

	// A write behind the aggregator's back is not visible: the cached
	// page is served until a mutation invalidates it.
	f.likes.likes = append(f.likes.likes, models.Like{PostID: post.ID.Hex(), UserID: 7})
	cached, err := f.aggregator.GetPage(context.Background(), nil, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cached.Posts[0].LikesCount)

	// A mutation through the aggregator invalidates the posts prefix.
	require.NoError(t, f.aggregator.LikePost(context.Background(), post.ID.Hex(), 8))
	fresh, err := f.aggregator.GetPage(context.Background(), nil, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Posts[0].LikesCount)
}

func TestExternalInvalidationUsesSharedPrefix(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	post := f.addPost(1, "sunset", time.Now())

	page, err := f.aggregator.GetPage(context.Background(), nil, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Posts[0].CommentsCount)

	// Other write paths (e.g. comment creation) share the cache and
	// invalidate the exported prefix rather than a private literal.
	f.comments.comments = append(f.comments.comments, models.Comment{PostID: post.ID.Hex(), UserID: 2, Content: "nice"})
	f.cache.Invalidate(CachePrefix)

	fresh, err := f.aggregator.GetPage(context.Background(), nil, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.Posts[0].CommentsCount)
}

func TestDeletePostOwnership(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	post := f.addPost(1, "sunset", time.Now())

	err := f.aggregator.DeletePost(context.Background(), post.ID.Hex(), 2)
	require.ErrorIs(t, err, errs.Forbidden)
	assert.Len(t, f.posts.posts, 1)

	require.NoError(t, f.aggregator.DeletePost(context.Background(), post.ID.Hex(), 1))
	assert.Empty(t, f.posts.posts)
}

func TestSavePostIdempotent(t *testing.T) {
	f := newFixture()
	f.addProfile(1, "ana")
	post := f.addPost(1, "sunset", time.Now())
	pid := post.ID.Hex()

	require.NoError(t, f.aggregator.SavePost(context.Background(), pid, 2))
	require.NoError(t, f.aggregator.SavePost(context.Background(), pid, 2))
	assert.Len(t, f.saves.saves, 1)

	require.NoError(t, f.aggregator.UnsavePost(context.Background(), pid, 2))
	require.NoError(t, f.aggregator.UnsavePost(context.Background(), pid, 2))
	assert.Empty(t, f.saves.saves)
}
