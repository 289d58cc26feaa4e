package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/social-graph/backend/internal/identity"
	"github.com/anonto42/social-graph/backend/internal/models"
	"github.com/anonto42/social-graph/backend/internal/repositories"
	"github.com/anonto42/social-graph/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memStore is an in-memory stand-in for the Mongo collections and the
// notification table. Each method mirrors the single-document semantics of
// the real repositories.
type memStore struct {
	mu            sync.Mutex
	users         map[primitive.ObjectID]*models.User
	posts         map[primitive.ObjectID]*models.Post
	comments      map[primitive.ObjectID]*models.Comment
	notifications []models.Notification
	nextNotif     uint
	clock         time.Time

	failNotify error
	failWrite  error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[primitive.ObjectID]*models.User{},
		posts:    map[primitive.ObjectID]*models.Post{},
		comments: map[primitive.ObjectID]*models.Comment{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func pullID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	return append([]primitive.ObjectID{}, ids...)
}

// --- users ---

type memUsers struct{ *memStore }

func (r memUsers) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalID == user.ExternalID || u.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.Followers = []primitive.ObjectID{}
	user.Following = []primitive.ObjectID{}
	user.CreatedAt = r.tick()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r memUsers) copyUser(u *models.User) *models.User {
	c := *u
	c.Followers = cloneIDs(u.Followers)
	c.Following = cloneIDs(u.Following)
	return &c
}

func (r memUsers) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return r.copyUser(u), nil
	}
	return nil, repositories.ErrNotFound
}

func (r memUsers) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return r.copyUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r memUsers) GetUserByExternalID(_ context.Context, externalID string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ExternalID == externalID })
}

func (r memUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r memUsers) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *r.copyUser(u))
		}
	}
	return out, nil
}

func (r memUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (r memUsers) update(id primitive.ObjectID, apply func(*models.User)) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return nil, r.failWrite
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	apply(u)
	u.UpdatedAt = r.tick()
	return r.copyUser(u), nil
}

func (r memUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, error) {
	return r.update(id, func(u *models.User) {
		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}
		if req.Username != nil {
			u.Username = *req.Username
		}
		if req.Bio != nil {
			u.Bio = *req.Bio
		}
		if req.Location != nil {
			u.Location = *req.Location
		}
	})
}

func (r memUsers) SetProfilePicture(_ context.Context, id primitive.ObjectID, url string) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.ProfilePicture = url })
}

func (r memUsers) SetBannerImage(_ context.Context, id primitive.ObjectID, url string) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.BannerImage = url })
}

func (r memUsers) edge(id primitive.ObjectID, apply func(*models.User)) error {
	_, err := r.update(id, apply)
	return err
}

func (r memUsers) AddFollowing(_ context.Context, userID, targetID primitive.ObjectID) error {
	return r.edge(userID, func(u *models.User) { u.Following = addID(u.Following, targetID) })
}

func (r memUsers) RemoveFollowing(_ context.Context, userID, targetID primitive.ObjectID) error {
	return r.edge(userID, func(u *models.User) { u.Following = pullID(u.Following, targetID) })
}

func (r memUsers) AddFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	return r.edge(userID, func(u *models.User) { u.Followers = addID(u.Followers, followerID) })
}

func (r memUsers) RemoveFollower(_ context.Context, userID, followerID primitive.ObjectID) error {
	return r.edge(userID, func(u *models.User) { u.Followers = pullID(u.Followers, followerID) })
}

// --- posts ---

type memPosts struct{ *memStore }

func copyPost(p *models.Post) models.Post {
	c := *p
	c.Likes = cloneIDs(p.Likes)
	c.Comments = cloneIDs(p.Comments)
	return c
}

func (r memPosts) CreatePost(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.Likes = []primitive.ObjectID{}
	post.Comments = []primitive.ObjectID{}
	post.CreatedAt = r.tick()
	post.UpdatedAt = post.CreatedAt
	stored := copyPost(post)
	r.posts[post.ID] = &stored
	return nil
}

func (r memPosts) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		c := copyPost(p)
		return &c, nil
	}
	return nil, repositories.ErrNotFound
}

func (r memPosts) list(match func(*models.Post) bool) []models.Post {
	out := []models.Post{}
	for _, p := range r.posts {
		if match(p) {
			out = append(out, copyPost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memPosts) GetPostsByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(p *models.Post) bool { return p.User == userID }), nil
}

func (r memPosts) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.list(func(*models.Post) bool { return true })
	if skip >= int64(len(all)) {
		return []models.Post{}, nil
	}
	all = all[skip:]
	if limit > 0 && limit < int64(len(all)) {
		all = all[:limit]
	}
	return all, nil
}

func (r memPosts) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Post{}
	for _, id := range ids {
		if p, ok := r.posts[id]; ok {
			out = append(out, copyPost(p))
		}
	}
	return out, nil
}

func (r memPosts) update(id primitive.ObjectID, apply func(*models.Post)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	p, ok := r.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(p)
	return nil
}

func (r memPosts) AddLike(_ context.Context, postID, userID primitive.ObjectID) error {
	return r.update(postID, func(p *models.Post) { p.Likes = addID(p.Likes, userID) })
}

func (r memPosts) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) error {
	return r.update(postID, func(p *models.Post) { p.Likes = pullID(p.Likes, userID) })
}

func (r memPosts) AddComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	return r.update(postID, func(p *models.Post) { p.Comments = addID(p.Comments, commentID) })
}

func (r memPosts) RemoveComment(_ context.Context, postID, commentID primitive.ObjectID) error {
	return r.update(postID, func(p *models.Post) { p.Comments = pullID(p.Comments, commentID) })
}

func (r memPosts) DeletePost(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

// --- comments ---

type memComments struct{ *memStore }

func copyComment(c *models.Comment) models.Comment {
	out := *c
	out.Likes = cloneIDs(c.Likes)
	return out
}

func (r memComments) CreateComment(_ context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	comment.Likes = []primitive.ObjectID{}
	comment.CreatedAt = r.tick()
	comment.UpdatedAt = comment.CreatedAt
	stored := copyComment(comment)
	r.comments[comment.ID] = &stored
	return nil
}

func (r memComments) GetCommentByID(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.comments[id]; ok {
		out := copyComment(c)
		return &out, nil
	}
	return nil, repositories.ErrNotFound
}

func (r memComments) GetCommentsByPostID(_ context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Comment{}
	for _, c := range r.comments {
		if c.Post == postID {
			out = append(out, copyComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memComments) GetCommentsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Comment{}
	for _, id := range ids {
		if c, ok := r.comments[id]; ok {
			out = append(out, copyComment(c))
		}
	}
	return out, nil
}

func (r memComments) update(id primitive.ObjectID, apply func(*models.Comment)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(c)
	return nil
}

func (r memComments) AddLike(_ context.Context, commentID, userID primitive.ObjectID) error {
	return r.update(commentID, func(c *models.Comment) { c.Likes = addID(c.Likes, userID) })
}

func (r memComments) RemoveLike(_ context.Context, commentID, userID primitive.ObjectID) error {
	return r.update(commentID, func(c *models.Comment) { c.Likes = pullID(c.Likes, userID) })
}

func (r memComments) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r memComments) DeleteCommentsByPostID(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.comments {
		if c.Post == postID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

// --- notifications ---

type memNotifications struct{ *memStore }

func (r memNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNotify != nil {
		return r.failNotify
	}
	r.nextNotif++
	n.ID = r.nextNotif
	n.CreatedAt = r.tick()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r memNotifications) GetNotificationByID(_ context.Context, id uint) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			n := r.notifications[i]
			return &n, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r memNotifications) GetByRecipient(_ context.Context, recipient string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Notification{}
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].To == recipient {
			out = append(out, r.notifications[i])
		}
	}
	return out, nil
}

func (r memNotifications) DeleteNotification(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// --- media ---

type fakeMedia struct {
	mu        sync.Mutex
	failFull  error
	failAll   error
	uploads   []storage.Quality
	deleted   []string
	failDel   error
	nextIndex int
}

func (f *fakeMedia) Upload(_ context.Context, _ storage.Image, preset storage.Preset, q storage.Quality) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, q)
	if f.failAll != nil {
		return "", f.failAll
	}
	if q == storage.QualityFull && f.failFull != nil {
		return "", f.failFull
	}
	f.nextIndex++
	return "https://media.test/" + preset.Folder + "/" + q.String() + "-" + string(rune('a'+f.nextIndex)), nil
}

func (f *fakeMedia) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return f.failDel
}

// --- identity ---

type fakeProvider struct {
	profiles map[string]*identity.Profile
	calls    int
}

func (p *fakeProvider) Verify(_ context.Context, token string) (*identity.Principal, error) {
	return &identity.Principal{UID: token}, nil
}

func (p *fakeProvider) LookupProfile(_ context.Context, principal *identity.Principal) (*identity.Profile, error) {
	p.calls++
	if profile, ok := p.profiles[principal.UID]; ok {
		return profile, nil
	}
	return nil, errors.New("no such account")
}

// --- fixture ---

type fixture struct {
	store         *memStore
	media         *fakeMedia
	users         memUsers
	posts         memPosts
	comments      memComments
	notifications memNotifications

	notifier   *Notifier
	engagement *EngagementService
	cascade    *CascadeService
	postSvc    *PostService
	commentSvc *CommentService
	profileSvc *ProfileService
	notifSvc   *NotificationService
}

func newFixture() *fixture {
	store := newMemStore()
	log := zap.NewNop()
	f := &fixture{
		store:         store,
		media:         &fakeMedia{},
		users:         memUsers{store},
		posts:         memPosts{store},
		comments:      memComments{store},
		notifications: memNotifications{store},
	}
	f.notifier = NewNotifier(f.notifications, log)
	f.engagement = NewEngagementService(f.users, f.posts, f.comments, f.notifier, log)
	f.cascade = NewCascadeService(f.posts, f.comments, f.media, log)
	f.postSvc = NewPostService(f.posts, f.comments, f.users, f.media, log)
	f.commentSvc = NewCommentService(f.comments, f.posts, f.users, f.notifier, log)
	f.profileSvc = NewProfileService(f.users, f.media, log)
	f.notifSvc = NewNotificationService(f.notifications, f.users, f.posts, f.comments, log)
	return f
}

func (f *fixture) user(username string) *models.User {
	u := &models.User{ExternalID: "ext-" + username, Username: username, Email: username + "@example.com"}
	if err := f.users.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

// reload returns the stored state of a user
func (f *fixture) reload(u *models.User) *models.User {
	fresh, err := f.users.GetUserByID(context.Background(), u.ID)
	if err != nil {
		panic(err)
	}
	return fresh
}

func (f *fixture) post(owner *models.User, content, image string) *models.Post {
	p := &models.Post{User: owner.ID, Content: content, Image: image}
	if err := f.posts.CreatePost(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

func (f *fixture) comment(owner *models.User, post *models.Post, content string) *models.Comment {
	c := &models.Comment{User: owner.ID, Post: post.ID, Content: content}
	if err := f.comments.CreateComment(context.Background(), c); err != nil {
		panic(err)
	}
	if err := f.posts.AddComment(context.Background(), post.ID, c.ID); err != nil {
		panic(err)
	}
	return c
}
