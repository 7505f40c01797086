package repository

import (
	"context"
	"fmt"
	"testing"

	"blogora/internal/dto"
	"blogora/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB gives each test its own in-memory database with foreign keys
// enforced, so the FK cascades behave like production.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Category{},
		&model.Tag{},
		&model.Post{},
		&model.Comment{},
		&model.Rating{},
		&model.Like{},
		&model.Subscription{},
		&model.Notification{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user, &model.Profile{}))
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, author *model.User, status string) *model.Post {
	t.Helper()
	post := &model.Post{
		Title:    "A post by " + author.Username,
		Content:  "content",
		AuthorID: author.ID,
		Status:   status,
	}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), post))
	return post
}

func postFilterAll() dto.PostFilter {
	return dto.PostFilter{Page: 1, Limit: 20}
}

func TestRatingRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewRatingRepository(db)

	author := createTestUser(t, db, "author")
	rater := createTestUser(t, db, "rater")
	post := createTestPost(t, db, author, model.PostStatusPublished)

	t.Run("first rating creates a row", func(t *testing.T) {
		err := repo.Upsert(ctx, &model.Rating{PostID: post.ID, UserID: rater.ID, Value: 3})
		require.NoError(t, err)

		count, err := repo.Count(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("re-rating overwrites in place", func(t *testing.T) {
		err := repo.Upsert(ctx, &model.Rating{PostID: post.ID, UserID: rater.ID, Value: 5})
		require.NoError(t, err)

		count, err := repo.Count(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		stored, err := repo.FindByPostAndUser(ctx, post.ID, rater.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, stored.Value)
	})

	t.Run("average covers all raters", func(t *testing.T) {
		second := createTestUser(t, db, "second")
		require.NoError(t, repo.Upsert(ctx, &model.Rating{PostID: post.ID, UserID: second.ID, Value: 1}))

		avg, err := repo.Average(ctx, post.ID)
		require.NoError(t, err)
		require.NotNil(t, avg)
		assert.InDelta(t, 3.0, *avg, 0.001)
	})

	t.Run("average of an unrated post is nil", func(t *testing.T) {
		other := createTestPost(t, db, author, model.PostStatusPublished)

		avg, err := repo.Average(ctx, other.ID)
		require.NoError(t, err)
		assert.Nil(t, avg)
	})
}

func TestLikeRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewLikeRepository(db)

	author := createTestUser(t, db, "author")
	fan := createTestUser(t, db, "fan")
	post := createTestPost(t, db, author, model.PostStatusPublished)

	t.Run("duplicate like hits the composite key", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &model.Like{PostID: post.ID, UserID: fan.ID}))

		err := repo.Create(ctx, &model.Like{PostID: post.ID, UserID: fan.ID})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

		count, err := repo.Count(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("delete reports whether a row went away", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, post.ID, fan.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, post.ID, fan.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("exists follows the row", func(t *testing.T) {
		exists, err := repo.Exists(ctx, post.ID, fan.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, repo.Create(ctx, &model.Like{PostID: post.ID, UserID: fan.ID}))

		exists, err = repo.Exists(ctx, post.ID, fan.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestCommentRepository_Ordering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, model.PostStatusPublished)

	first := &model.Comment{PostID: post.ID, UserID: author.ID, Content: "first"}
	require.NoError(t, repo.Create(ctx, first))
	second := &model.Comment{PostID: post.ID, UserID: author.ID, Content: "second"}
	require.NoError(t, repo.Create(ctx, second))
	third := &model.Comment{PostID: post.ID, UserID: author.ID, Content: "third"}
	require.NoError(t, repo.Create(ctx, third))

	comments, err := repo.FindByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	// Newest first; the v7 id breaks ties for same-second inserts
	assert.Equal(t, "third", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	assert.Equal(t, "first", comments[2].Content)
}

func TestCommentRepository_CascadeDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author, model.PostStatusPublished)

	parent := &model.Comment{PostID: post.ID, UserID: author.ID, Content: "parent"}
	require.NoError(t, repo.Create(ctx, parent))
	reply := &model.Comment{PostID: post.ID, UserID: author.ID, Content: "reply", ParentID: &parent.ID}
	require.NoError(t, repo.Create(ctx, reply))

	require.NoError(t, repo.Delete(ctx, parent.ID))

	comments, err := repo.FindByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments, "replies must fall with their parent")
}

func TestSubscriptionRepository_FindForPost(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewSubscriptionRepository(db)

	author := createTestUser(t, db, "author")
	authorFan := createTestUser(t, db, "authorfan")
	categoryFan := createTestUser(t, db, "categoryfan")
	bystander := createTestUser(t, db, "bystander")

	category := &model.Category{Name: "go"}
	require.NoError(t, NewCategoryRepository(db).Create(ctx, category))

	require.NoError(t, repo.Create(ctx, &model.Subscription{UserID: authorFan.ID, AuthorID: &author.ID}))
	require.NoError(t, repo.Create(ctx, &model.Subscription{UserID: categoryFan.ID, CategoryID: &category.ID}))
	// The author follows their own category; fan-out must skip them
	require.NoError(t, repo.Create(ctx, &model.Subscription{UserID: author.ID, CategoryID: &category.ID}))
	// The bystander follows somebody else entirely
	require.NoError(t, repo.Create(ctx, &model.Subscription{UserID: bystander.ID, AuthorID: &categoryFan.ID}))

	t.Run("matches author and category subscribers", func(t *testing.T) {
		subs, err := repo.FindForPost(ctx, author.ID, &category.ID)
		require.NoError(t, err)

		var userIDs []uuid.UUID
		for _, sub := range subs {
			userIDs = append(userIDs, sub.UserID)
		}
		assert.ElementsMatch(t, []uuid.UUID{authorFan.ID, categoryFan.ID}, userIDs)
	})

	t.Run("a post without category reaches author subscribers only", func(t *testing.T) {
		subs, err := repo.FindForPost(ctx, author.ID, nil)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, authorFan.ID, subs[0].UserID)
	})
}

func TestSubscriptionRepository_UniquePairs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewSubscriptionRepository(db)

	author := createTestUser(t, db, "author")
	fan := createTestUser(t, db, "fan")

	require.NoError(t, repo.Create(ctx, &model.Subscription{UserID: fan.ID, AuthorID: &author.ID}))

	err := repo.Create(ctx, &model.Subscription{UserID: fan.ID, AuthorID: &author.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestPostRepository_ListPublished(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	createTestPost(t, db, alice, model.PostStatusPublished)
	createTestPost(t, db, alice, model.PostStatusDraft)
	createTestPost(t, db, bob, model.PostStatusPublished)

	t.Run("drafts never show up", func(t *testing.T) {
		posts, meta, err := repo.ListPublished(ctx, postFilterAll())
		require.NoError(t, err)
		assert.Len(t, posts, 2)
		assert.Equal(t, int64(2), meta.Total)
		for _, p := range posts {
			assert.Equal(t, model.PostStatusPublished, p.Status)
		}
	})

	t.Run("author filter narrows the listing", func(t *testing.T) {
		filter := postFilterAll()
		filter.AuthorID = alice.ID.String()

		posts, _, err := repo.ListPublished(ctx, filter)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, alice.ID, posts[0].AuthorID)
	})

	t.Run("drafts listing is per author", func(t *testing.T) {
		drafts, err := repo.ListDraftsByAuthor(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, drafts, 1)
		assert.Equal(t, model.PostStatusDraft, drafts[0].Status)

		drafts, err = repo.ListDraftsByAuthor(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, drafts)
	})
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)

	author := createTestUser(t, db, "author")
	fan := createTestUser(t, db, "fan")
	post := createTestPost(t, db, author, model.PostStatusPublished)

	require.NoError(t, NewCommentRepository(db).Create(ctx, &model.Comment{
		PostID: post.ID, UserID: fan.ID, Content: "hi",
	}))
	require.NoError(t, NewRatingRepository(db).Upsert(ctx, &model.Rating{
		PostID: post.ID, UserID: fan.ID, Value: 4,
	}))
	require.NoError(t, NewLikeRepository(db).Create(ctx, &model.Like{
		PostID: post.ID, UserID: fan.ID,
	}))
	// Subscriptions target the author, not the post; they must survive
	subRepo := NewSubscriptionRepository(db)
	require.NoError(t, subRepo.Create(ctx, &model.Subscription{UserID: fan.ID, AuthorID: &author.ID}))

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err := repo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	comments, err := NewCommentRepository(db).FindByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	likes, err := NewLikeRepository(db).Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), likes)

	ratings, err := NewRatingRepository(db).Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ratings)

	subs, err := subRepo.ListByUser(ctx, fan.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}
