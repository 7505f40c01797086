package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"blogora/internal/model"
	"blogora/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fanoutFixture struct {
	svc      FanoutService
	postRepo *fakePostRepo
	subRepo  *fakeSubscriptionRepo
	userRepo *fakeUserRepo
	notifier *fakeNotifier
}

func newFanoutFixture() *fanoutFixture {
	postRepo := newFakePostRepo()
	subRepo := newFakeSubscriptionRepo()
	userRepo := newFakeUserRepo()
	notifier := newFakeNotifier()

	return &fanoutFixture{
		svc:      NewFanoutService(postRepo, subRepo, userRepo, notifier),
		postRepo: postRepo,
		subRepo:  subRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (f *fanoutFixture) addPublishedPost(author *model.User, categoryID *uuid.UUID) *model.Post {
	return f.postRepo.add(&model.Post{
		Title:      "Fresh post",
		Content:    "body",
		AuthorID:   author.ID,
		Author:     *author,
		CategoryID: categoryID,
		Status:     model.PostStatusPublished,
	})
}

func (f *fanoutFixture) subscribeToAuthor(userID, authorID uuid.UUID) {
	_ = f.subRepo.Create(context.Background(), &model.Subscription{UserID: userID, AuthorID: &authorID})
}

func (f *fanoutFixture) subscribeToCategory(userID, categoryID uuid.UUID) {
	_ = f.subRepo.Create(context.Background(), &model.Subscription{UserID: userID, CategoryID: &categoryID})
}

func TestFanoutService_ResolveRecipients(t *testing.T) {
	ctx := context.Background()

	t.Run("unions author and category subscribers", func(t *testing.T) {
		f := newFanoutFixture()
		author := f.userRepo.add(&model.User{Username: "alice"})
		categoryID := uuid.New()
		post := f.addPublishedPost(author, &categoryID)

		authorFan := uuid.New()
		categoryFan := uuid.New()
		f.subscribeToAuthor(authorFan, author.ID)
		f.subscribeToCategory(categoryFan, categoryID)

		recipients, err := f.svc.ResolveRecipients(ctx, post)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{authorFan, categoryFan}, recipients)
	})

	t.Run("a double subscriber appears once", func(t *testing.T) {
		f := newFanoutFixture()
		author := f.userRepo.add(&model.User{Username: "alice"})
		categoryID := uuid.New()
		post := f.addPublishedPost(author, &categoryID)

		fan := uuid.New()
		f.subscribeToAuthor(fan, author.ID)
		f.subscribeToCategory(fan, categoryID)

		recipients, err := f.svc.ResolveRecipients(ctx, post)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{fan}, recipients)
	})

	t.Run("the author is never a recipient", func(t *testing.T) {
		f := newFanoutFixture()
		author := f.userRepo.add(&model.User{Username: "alice"})
		categoryID := uuid.New()
		post := f.addPublishedPost(author, &categoryID)

		// Author follows their own category
		f.subscribeToCategory(author.ID, categoryID)
		fan := uuid.New()
		f.subscribeToAuthor(fan, author.ID)

		recipients, err := f.svc.ResolveRecipients(ctx, post)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{fan}, recipients)
	})

	t.Run("a post without category only reaches author subscribers", func(t *testing.T) {
		f := newFanoutFixture()
		author := f.userRepo.add(&model.User{Username: "alice"})
		post := f.addPublishedPost(author, nil)

		fan := uuid.New()
		f.subscribeToAuthor(fan, author.ID)
		f.subscribeToCategory(uuid.New(), uuid.New())

		recipients, err := f.svc.ResolveRecipients(ctx, post)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{fan}, recipients)
	})
}

func TestFanoutService_NotifyPostPublished(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers one notification per recipient", func(t *testing.T) {
		f := newFanoutFixture()
		author := f.userRepo.add(&model.User{Username: "alice"})
		post := f.addPublishedPost(author, nil)

		fans := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
		for _, fan := range fans {
			f.subscribeToAuthor(fan, author.ID)
		}

		result, err := f.svc.NotifyPostPublished(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Recipients)
		assert.Equal(t, 3, result.Delivered)
		assert.Empty(t, result.Failed)
		assert.Len(t, f.notifier.sent, 3)
		assert.Contains(t, f.notifier.sent[0].Subject, "alice")
	})

	t.Run("one failed delivery does not block the rest", func(t *testing.T) {
		f := newFanoutFixture()
		author := f.userRepo.add(&model.User{Username: "alice"})
		post := f.addPublishedPost(author, nil)

		good := uuid.New()
		bad := uuid.New()
		f.subscribeToAuthor(good, author.ID)
		f.subscribeToAuthor(bad, author.ID)
		f.notifier.failFor[bad] = errors.New("channel closed")

		result, err := f.svc.NotifyPostPublished(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Recipients)
		assert.Equal(t, 1, result.Delivered)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, bad, result.Failed[0].Recipient)
		assert.Equal(t, "channel closed", result.Failed[0].Reason)
	})

	t.Run("rejects drafts", func(t *testing.T) {
		f := newFanoutFixture()
		author := f.userRepo.add(&model.User{Username: "alice"})
		draft := f.postRepo.add(&model.Post{
			Title:    "wip",
			AuthorID: author.ID,
			Author:   *author,
			Status:   model.PostStatusDraft,
		})

		_, err := f.svc.NotifyPostPublished(ctx, draft.ID)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("unknown post is not found", func(t *testing.T) {
		f := newFanoutFixture()

		_, err := f.svc.NotifyPostPublished(ctx, uuid.New())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestFanoutService_SharePost(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies the user behind the email", func(t *testing.T) {
		f := newFanoutFixture()
		author := f.userRepo.add(&model.User{Username: "alice"})
		sender := f.userRepo.add(&model.User{Username: "bob", Email: "bob@example.com"})
		recipient := f.userRepo.add(&model.User{Username: "carol", Email: "carol@example.com"})
		post := f.addPublishedPost(author, nil)

		err := f.svc.SharePost(ctx, sender.ID, post.ID, "carol@example.com")
		require.NoError(t, err)
		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, recipient.ID, f.notifier.sent[0].Recipient)
		assert.Contains(t, f.notifier.sent[0].Body, "bob")
		assert.Contains(t, f.notifier.sent[0].Body, post.Title)
	})

	t.Run("truncates long content in the preview", func(t *testing.T) {
		f := newFanoutFixture()
		author := f.userRepo.add(&model.User{Username: "alice"})
		sender := f.userRepo.add(&model.User{Username: "bob", Email: "bob@example.com"})
		f.userRepo.add(&model.User{Username: "carol", Email: "carol@example.com"})

		post := f.postRepo.add(&model.Post{
			Title:    "Long one",
			Content:  strings.Repeat("x", 500),
			AuthorID: author.ID,
			Author:   *author,
			Status:   model.PostStatusPublished,
		})

		err := f.svc.SharePost(ctx, sender.ID, post.ID, "carol@example.com")
		require.NoError(t, err)
		require.Len(t, f.notifier.sent, 1)
		assert.Contains(t, f.notifier.sent[0].Body, strings.Repeat("x", 200)+"...")
		assert.NotContains(t, f.notifier.sent[0].Body, strings.Repeat("x", 201))
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		f := newFanoutFixture()
		author := f.userRepo.add(&model.User{Username: "alice"})
		sender := f.userRepo.add(&model.User{Username: "bob"})
		post := f.addPublishedPost(author, nil)

		err := f.svc.SharePost(ctx, sender.ID, post.ID, "nobody@example.com")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}
