// Package feed turns raw post, profile, like, comment and saved-post rows
// into the denormalized, per-viewer feed. The aggregator is a stateless
// leaf: it talks only to its stores, and every read either fully succeeds
// or fails as a whole.
package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumagram/backend/internal/cache"
	"github.com/lumagram/backend/internal/errs"
	"github.com/lumagram/backend/internal/models"
	"github.com/lumagram/backend/internal/notify"
	"github.com/lumagram/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the feed page size used when the caller does not
// specify one.
const DefaultPageSize = 5

// MaxPageSize bounds the per-page fan-out of the enrichment lookups.
const MaxPageSize = 50

// CachePrefix keys every feed query in the shared cache. Mutations that
// change what an enriched page would contain, wherever they live, must
// invalidate this prefix.
const CachePrefix = "posts"

// EnrichedPost is a post merged with its author's profile, aggregate
// counts, and the viewer's like/save flags.
type EnrichedPost struct {
	models.Post
	Author        models.AuthorRef `json:"author"`
	LikesCount    int64            `json:"likes_count"`
	CommentsCount int64            `json:"comments_count"`
	IsLiked       bool             `json:"is_liked"`
	IsSaved       bool             `json:"is_saved"`
}

// Page is one feed page. NextCursor is set iff the underlying read returned
// a full page; nil signals the last page.
type Page struct {
	Posts      []EnrichedPost `json:"posts"`
	NextCursor *int64         `json:"next_cursor"`
}

// Aggregator assembles feed pages and applies feed mutations.
type Aggregator struct {
	posts    repositories.PostRepository
	profiles repositories.ProfileRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	saves    repositories.SavedPostRepository
	cache    *cache.QueryCache
	sink     notify.Sink
}

// NewAggregator creates a feed aggregator. The cache is shared with other
// aggregators; the sink receives like notifications.
func NewAggregator(
	posts repositories.PostRepository,
	profiles repositories.ProfileRepository,
	likes repositories.LikeRepository,
	comments repositories.CommentRepository,
	saves repositories.SavedPostRepository,
	queryCache *cache.QueryCache,
	sink notify.Sink,
) *Aggregator {
	return &Aggregator{
		posts:    posts,
		profiles: profiles,
		likes:    likes,
		comments: comments,
		saves:    saves,
		cache:    queryCache,
		sink:     sink,
	}
}

// GetPage returns one feed page. viewerID is nil for anonymous browsing;
// cursor is the offset of the first post (0 for the first page).
func (a *Aggregator) GetPage(ctx context.Context, viewerID *uint, cursor, pageSize int64) (*Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if cursor < 0 {
		cursor = 0
	}

	key := pageKey(viewerID, cursor, pageSize)
	if cached, ok := a.cache.Get(key); ok {
		if page, ok := cached.(*Page); ok {
			return page, nil
		}
	}

	posts, err := a.posts.GetPostsPage(ctx, cursor, pageSize)
	if err != nil {
		return nil, errs.Fetch("feed.GetPage", err)
	}
	if len(posts) == 0 {
		page := &Page{Posts: []EnrichedPost{}}
		a.cache.Set(key, page)
		return page, nil
	}

	// Id sets are collected from this page only, bounding the fan-out of
	// the batch lookups to the page size.
	postIDs := make([]string, len(posts))
	authorSet := make(map[uint]bool)
	var authorIDs []uint
	for i, p := range posts {
		postIDs[i] = p.ID.Hex()
		if !authorSet[p.AuthorID] {
			authorSet[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	var (
		profiles      []models.Profile
		likeCounts    map[string]int64
		commentCounts map[string]int64
		viewerLiked   map[string]bool
		viewerSaved   map[string]bool
	)

	// The enrichment reads run concurrently and join before the merge.
	// One failure fails the page; there is no partial degradation.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		profiles, err = a.profiles.GetProfilesByIDs(authorIDs)
		return err
	})
	g.Go(func() error {
		var err error
		likeCounts, err = a.likes.CountByPostIDs(postIDs)
		return err
	})
	g.Go(func() error {
		var err error
		commentCounts, err = a.comments.CountByPostIDs(postIDs)
		return err
	})
	if viewerID != nil {
		viewer := *viewerID
		g.Go(func() error {
			var err error
			viewerLiked, err = a.likes.LikedPostIDs(viewer, postIDs)
			return err
		})
		g.Go(func() error {
			var err error
			viewerSaved, err = a.saves.SavedPostIDs(viewer, postIDs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errs.Fetch("feed.GetPage", err)
	}

	profileMap := make(map[uint]models.ProfileCompact, len(profiles))
	for _, p := range profiles {
		profileMap[p.ID] = p.ToCompact()
	}

	enriched := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		pid := postIDs[i]
		author := models.UnknownAuthor()
		if compact, ok := profileMap[p.AuthorID]; ok {
			author = models.FoundAuthor(compact)
		}
		enriched[i] = EnrichedPost{
			Post:          p,
			Author:        author,
			LikesCount:    likeCounts[pid],
			CommentsCount: commentCounts[pid],
			IsLiked:       viewerLiked[pid],
			IsSaved:       viewerSaved[pid],
		}
	}

	page := &Page{Posts: enriched}
	if int64(len(posts)) == pageSize {
		next := cursor + pageSize
		page.NextCursor = &next
	}

	a.cache.Set(key, page)
	return page, nil
}

// CreatePost inserts a new post and invalidates the feed cache.
func (a *Aggregator) CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.Post, error) {
	post := &models.Post{
		AuthorID: authorID,
		MediaURL: req.MediaURL,
		Caption:  req.Caption,
		IsReel:   req.IsReel,
	}
	if err := a.posts.CreatePost(ctx, post); err != nil {
		return nil, errs.Fetch("feed.CreatePost", err)
	}
	a.cache.Invalidate(CachePrefix)
	return post, nil
}

// DeletePost removes a post. Only its author may delete it.
func (a *Aggregator) DeletePost(ctx context.Context, postID string, requesterID uint) error {
	post, err := a.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != requesterID {
		return errs.Forbidden
	}
	if err := a.posts.DeletePost(ctx, postID); err != nil {
		return errs.Fetch("feed.DeletePost", err)
	}
	a.cache.Invalidate(CachePrefix)
	return nil
}

// LikePost records the viewer's like. Liking an already-liked post is an
// idempotent no-op. On a new like the post's author is notified unless the
// liker is the author; notification failures never surface here.
func (a *Aggregator) LikePost(ctx context.Context, postID string, viewerID uint) error {
	post, err := a.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	liked, err := a.likes.HasUserLikedPost(postID, viewerID)
	if err != nil {
		return errs.Fetch("feed.LikePost", err)
	}
	if liked {
		return nil
	}

	err = a.likes.CreateLike(&models.Like{PostID: postID, UserID: viewerID})
	if err != nil {
		// Lost the race against a concurrent like; the row exists.
		if errors.Is(err, errs.Duplicate) {
			return nil
		}
		return errs.Fetch("feed.LikePost", err)
	}
	a.cache.Invalidate(CachePrefix)

	if post.AuthorID != viewerID {
		a.sink.Notify(ctx, notify.Event{
			Type:        models.NotificationLike,
			ActorID:     viewerID,
			RecipientID: post.AuthorID,
			TargetID:    postID,
			TargetType:  "post",
			Preview:     post.Caption,
		})
	}
	return nil
}

// UnlikePost removes the viewer's like. Unliking a post the viewer has not
// liked is a no-op.
func (a *Aggregator) UnlikePost(ctx context.Context, postID string, viewerID uint) error {
	if err := a.likes.DeleteLike(postID, viewerID); err != nil {
		return errs.Fetch("feed.UnlikePost", err)
	}
	a.cache.Invalidate(CachePrefix)
	return nil
}

// SavePost bookmarks a post for the viewer; already saved is a no-op.
func (a *Aggregator) SavePost(ctx context.Context, postID string, viewerID uint) error {
	if _, err := a.posts.GetPostByID(ctx, postID); err != nil {
		return err
	}
	err := a.saves.CreateSavedPost(&models.SavedPost{PostID: postID, UserID: viewerID})
	if err != nil && !errors.Is(err, errs.Duplicate) {
		return errs.Fetch("feed.SavePost", err)
	}
	a.cache.Invalidate(CachePrefix)
	return nil
}

// UnsavePost removes the viewer's bookmark; absent is a no-op.
func (a *Aggregator) UnsavePost(ctx context.Context, postID string, viewerID uint) error {
	if err := a.saves.DeleteSavedPost(postID, viewerID); err != nil {
		return errs.Fetch("feed.UnsavePost", err)
	}
	a.cache.Invalidate(CachePrefix)
	return nil
}

func pageKey(viewerID *uint, cursor, pageSize int64) string {
	viewer := "anon"
	if viewerID != nil {
		viewer = fmt.Sprintf("viewer-%d", *viewerID)
	}
	return fmt.Sprintf("%s:%d:%d:%s", CachePrefix, cursor, pageSize, viewer)
}
