// Package stories assembles the story rail: all non-expired stories,
// grouped by author, one representative entry per author annotated with the
// author's profile.
package stories

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/lumagram/backend/internal/cache"
	"github.com/lumagram/backend/internal/errs"
	"github.com/lumagram/backend/internal/models"
	"github.com/lumagram/backend/internal/repositories"
	"github.com/lumagram/backend/internal/storage"
)

const cachePrefix = "stories"

// AuthorStories is one rail entry: the author's most recent active story
// plus the full recency-ordered group, so a viewer can page through all of
// an author's active stories.
type AuthorStories struct {
	Author models.AuthorRef `json:"author"`
	Latest models.Story     `json:"latest"`
	Items  []models.Story   `json:"items"`
}

// Rail is the assembled story rail for one viewer.
type Rail struct {
	Entries           []AuthorStories `json:"entries"`
	HasOwnActiveStory bool            `json:"has_own_active_story"`
}

// Aggregator assembles the story rail and applies story mutations.
type Aggregator struct {
	stories  repositories.StoryRepository
	profiles repositories.ProfileRepository
	blobs    storage.BlobStore
	cache    *cache.QueryCache
	now      func() time.Time
}

// NewAggregator creates a story aggregator.
func NewAggregator(
	stories repositories.StoryRepository,
	profiles repositories.ProfileRepository,
	blobs storage.BlobStore,
	queryCache *cache.QueryCache,
) *Aggregator {
	return &Aggregator{
		stories:  stories,
		profiles: profiles,
		blobs:    blobs,
		cache:    queryCache,
		now:      time.Now,
	}
}

// GetActiveStories returns the story rail. viewerID is nil for anonymous
// browsing; HasOwnActiveStory is always false then.
func (a *Aggregator) GetActiveStories(ctx context.Context, viewerID *uint) (*Rail, error) {
	entries, err := a.activeEntries(ctx)
	if err != nil {
		return nil, err
	}

	rail := &Rail{Entries: entries}
	if viewerID != nil {
		for _, e := range entries {
			if e.Latest.AuthorID == *viewerID {
				rail.HasOwnActiveStory = true
				break
			}
		}
	}
	return rail, nil
}

// activeEntries groups the active stories by author. The grouped entries
// are viewer-independent and cached under the stories prefix.
func (a *Aggregator) activeEntries(ctx context.Context) ([]AuthorStories, error) {
	key := cachePrefix + ":active"
	if cached, ok := a.cache.Get(key); ok {
		if entries, ok := cached.([]AuthorStories); ok {
			return pruneExpired(entries, a.now()), nil
		}
	}

	active, err := a.stories.GetActiveStories(ctx, a.now())
	if err != nil {
		return nil, errs.Fetch("stories.GetActiveStories", err)
	}

	authorSet := make(map[uint]bool)
	var authorIDs []uint
	for _, s := range active {
		if !authorSet[s.AuthorID] {
			authorSet[s.AuthorID] = true
			authorIDs = append(authorIDs, s.AuthorID)
		}
	}

	profiles, err := a.profiles.GetProfilesByIDs(authorIDs)
	if err != nil {
		return nil, errs.Fetch("stories.GetActiveStories", err)
	}
	profileMap := make(map[uint]models.ProfileCompact, len(profiles))
	for _, p := range profiles {
		profileMap[p.ID] = p.ToCompact()
	}

	// Stories arrive newest first, so each author's group is already
	// recency-sorted and group[0] is the representative.
	groups := make(map[uint][]models.Story)
	for _, s := range active {
		groups[s.AuthorID] = append(groups[s.AuthorID], s)
	}

	entries := make([]AuthorStories, 0, len(authorIDs))
	for _, authorID := range authorIDs {
		group := groups[authorID]
		author := models.UnknownAuthor()
		if compact, ok := profileMap[authorID]; ok {
			author = models.FoundAuthor(compact)
		}
		entries = append(entries, AuthorStories{
			Author: author,
			Latest: group[0],
			Items:  group,
		})
	}

	a.cache.Set(key, entries)
	return entries, nil
}

// pruneExpired drops stories that expired after the entries were cached.
// Expiry is enforced at read time; the cache only saves the store reads.
// Authors whose whole group has expired lose their rail entry.
func pruneExpired(entries []AuthorStories, now time.Time) []AuthorStories {
	pruned := make([]AuthorStories, 0, len(entries))
	for _, e := range entries {
		items := make([]models.Story, 0, len(e.Items))
		for _, s := range e.Items {
			if s.Active(now) {
				items = append(items, s)
			}
		}
		if len(items) == 0 {
			continue
		}
		pruned = append(pruned, AuthorStories{
			Author: e.Author,
			Latest: items[0],
			Items:  items,
		})
	}
	return pruned
}

// CreateStory uploads the media blob, then inserts the story row
// referencing the resulting URL. The two calls are sequential and not
// transactional; a failed insert leaves an orphaned blob.
func (a *Aggregator) CreateStory(ctx context.Context, authorID uint, filename, contentType string, media io.Reader) (*models.Story, error) {
	// No bucket configured means no media storage for this deployment.
	if a.blobs == nil {
		return nil, errs.Unavailable
	}
	objectPath := fmt.Sprintf("stories/%d/%d%s", authorID, a.now().UnixNano(), path.Ext(filename))
	url, err := a.blobs.Upload(ctx, objectPath, contentType, media)
	if err != nil {
		return nil, errs.Fetch("stories.CreateStory", err)
	}

	story := &models.Story{
		AuthorID:  authorID,
		MediaURL:  url,
		CreatedAt: a.now(),
	}
	if err := a.stories.CreateStory(ctx, story); err != nil {
		return nil, errs.Fetch("stories.CreateStory", err)
	}

	a.cache.Invalidate(cachePrefix)
	return story, nil
}

// DeleteStory removes a story before its expiry. Only its author may
// delete it.
func (a *Aggregator) DeleteStory(ctx context.Context, storyID string, requesterID uint) error {
	story, err := a.stories.GetStoryByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story.AuthorID != requesterID {
		return errs.Forbidden
	}
	if err := a.stories.DeleteStory(ctx, storyID); err != nil {
		return errs.Fetch("stories.DeleteStory", err)
	}
	a.cache.Invalidate(cachePrefix)
	return nil
}

// PurgeExpired deletes stories past their expiry. Reads filter by expiry
// regardless; this only reclaims storage.
func (a *Aggregator) PurgeExpired(ctx context.Context) (int64, error) {
	purged, err := a.stories.PurgeExpired(ctx, a.now())
	if err != nil {
		return 0, errs.Fetch("stories.PurgeExpired", err)
	}
	if purged > 0 {
		a.cache.Invalidate(cachePrefix)
	}
	return purged, nil
}

// WithClock overrides the aggregator's time source. Used in tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}
