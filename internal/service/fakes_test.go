package service

import (
	"context"
	"time"

	"blogora/internal/dto"
	"blogora/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory stand-ins for the repository interfaces. They keep just enough
// behavior for the service tests: stable ordering, duplicate key detection,
// record-not-found on misses.

type fakePostRepo struct {
	posts map[uuid.UUID]*model.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[uuid.UUID]*model.Post)}
}

func (f *fakePostRepo) add(post *model.Post) *model.Post {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	f.posts[post.ID] = post
	return post
}

func (f *fakePostRepo) Create(ctx context.Context, post *model.Post) error {
	f.add(post)
	return nil
}

func (f *fakePostRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return post, nil
}

func (f *fakePostRepo) Update(ctx context.Context, post *model.Post) error {
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostRepo) ReplaceTags(ctx context.Context, post *model.Post, tags []model.Tag) error {
	post.Tags = tags
	return nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) ListPublished(ctx context.Context, filter dto.PostFilter) ([]model.Post, *dto.PaginationMeta, error) {
	return nil, &dto.PaginationMeta{}, nil
}

func (f *fakePostRepo) ListDraftsByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) TopRated(ctx context.Context, limit int) ([]model.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) TopLiked(ctx context.Context, limit int) ([]model.Post, error) {
	return nil, nil
}

type fakeCommentRepo struct {
	comments []*model.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	if comment.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		comment.ID = id
	}
	comment.CreatedAt = time.Now()
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeCommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	for _, c := range f.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCommentRepo) FindByPostID(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	// Newest first, matching the real query's created_at DESC
	var out []model.Comment
	for i := len(f.comments) - 1; i >= 0; i-- {
		if f.comments[i].PostID == postID {
			out = append(out, *f.comments[i])
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) Update(ctx context.Context, comment *model.Comment) error {
	for i, c := range f.comments {
		if c.ID == comment.ID {
			f.comments[i] = comment
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	doomed := map[uuid.UUID]bool{id: true}
	// Cascade to descendants the way the FK would
	for changed := true; changed; {
		changed = false
		for _, c := range f.comments {
			if c.ParentID != nil && doomed[*c.ParentID] && !doomed[c.ID] {
				doomed[c.ID] = true
				changed = true
			}
		}
	}

	kept := f.comments[:0]
	for _, c := range f.comments {
		if !doomed[c.ID] {
			kept = append(kept, c)
		}
	}
	f.comments = kept
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) add(user *model.User) *model.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User, profile *model.Profile) error {
	for _, u := range f.users {
		if u.Email == user.Email || u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	f.add(user)
	if profile != nil {
		profile.UserID = user.ID
		user.Profile = profile
	}
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User, profile *model.Profile) error {
	f.users[user.ID] = user
	if profile != nil {
		user.Profile = profile
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

type fakeSubscriptionRepo struct {
	subs []*model.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{}
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, sub *model.Subscription) error {
	for _, s := range f.subs {
		if s.UserID != sub.UserID {
			continue
		}
		if sub.AuthorID != nil && s.AuthorID != nil && *s.AuthorID == *sub.AuthorID {
			return gorm.ErrDuplicatedKey
		}
		if sub.CategoryID != nil && s.CategoryID != nil && *s.CategoryID == *sub.CategoryID {
			return gorm.ErrDuplicatedKey
		}
	}

	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	f.subs = append(f.subs, sub)
	return nil
}

func (f *fakeSubscriptionRepo) FindByUserAndAuthor(ctx context.Context, userID, authorID uuid.UUID) (*model.Subscription, error) {
	for _, s := range f.subs {
		if s.UserID == userID && s.AuthorID != nil && *s.AuthorID == authorID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubscriptionRepo) FindByUserAndCategory(ctx context.Context, userID, categoryID uuid.UUID) (*model.Subscription, error) {
	for _, s := range f.subs {
		if s.UserID == userID && s.CategoryID != nil && *s.CategoryID == categoryID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubscriptionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Subscription, error) {
	var out []model.Subscription
	for _, s := range f.subs {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) FindForPost(ctx context.Context, authorID uuid.UUID, categoryID *uuid.UUID) ([]model.Subscription, error) {
	var out []model.Subscription
	for _, s := range f.subs {
		if s.UserID == authorID {
			continue
		}
		if s.AuthorID != nil && *s.AuthorID == authorID {
			out = append(out, *s)
			continue
		}
		if categoryID != nil && s.CategoryID != nil && *s.CategoryID == *categoryID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, s := range f.subs {
		if s.ID == id {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (f *fakeCategoryRepo) add(category *model.Category) *model.Category {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	f.categories[category.ID] = category
	return category
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	for _, c := range f.categories {
		if c.Name == category.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	f.add(category)
	return nil
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, ok := f.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return category, nil
}

func (f *fakeCategoryRepo) FindAll(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.categories, id)
	return nil
}

type fakeRatingRepo struct {
	ratings map[string]*model.Rating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]*model.Rating)}
}

func ratingKey(postID, userID uuid.UUID) string {
	return postID.String() + "/" + userID.String()
}

func (f *fakeRatingRepo) Upsert(ctx context.Context, rating *model.Rating) error {
	f.ratings[ratingKey(rating.PostID, rating.UserID)] = rating
	return nil
}

func (f *fakeRatingRepo) FindByPostAndUser(ctx context.Context, postID, userID uuid.UUID) (*model.Rating, error) {
	rating, ok := f.ratings[ratingKey(postID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rating, nil
}

func (f *fakeRatingRepo) Average(ctx context.Context, postID uuid.UUID) (*float64, error) {
	var sum, count float64
	for _, r := range f.ratings {
		if r.PostID == postID {
			sum += float64(r.Value)
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	avg := sum / count
	return &avg, nil
}

func (f *fakeRatingRepo) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	for _, r := range f.ratings {
		if r.PostID == postID {
			count++
		}
	}
	return count, nil
}

type fakeLikeRepo struct {
	likes map[string]bool
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[string]bool)}
}

func (f *fakeLikeRepo) Create(ctx context.Context, like *model.Like) error {
	key := ratingKey(like.PostID, like.UserID)
	if f.likes[key] {
		return gorm.ErrDuplicatedKey
	}
	f.likes[key] = true
	return nil
}

func (f *fakeLikeRepo) Delete(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	key := ratingKey(postID, userID)
	if !f.likes[key] {
		return false, nil
	}
	delete(f.likes, key)
	return true, nil
}

func (f *fakeLikeRepo) Exists(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	return f.likes[ratingKey(postID, userID)], nil
}

func (f *fakeLikeRepo) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	for key, ok := range f.likes {
		if ok && key[:36] == postID.String() {
			count++
		}
	}
	return count, nil
}

type sentNotification struct {
	Recipient uuid.UUID
	Subject   string
	Body      string
}

type fakeNotifier struct {
	sent    []sentNotification
	failFor map[uuid.UUID]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[uuid.UUID]error)}
}

func (f *fakeNotifier) Send(ctx context.Context, recipient uuid.UUID, subject, body string) error {
	if err := f.failFor[recipient]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentNotification{Recipient: recipient, Subject: subject, Body: body})
	return nil
}
