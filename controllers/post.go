package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/navbryce/feed-be/app"
	appDb "github.com/navbryce/feed-be/db"
	"github.com/navbryce/feed-be/model"
	"github.com/navbryce/feed-be/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const PostsKey = "posts"

type PostControllerOpts struct {
	MaxAttempts int
	Now         func() time.Time
	NewId       func() string
}

// PostController owns the posts collection: one JSON document under PostsKey, most recent first.
// Every mutation is a read-modify-write guarded by the entry version, so concurrent writers
// retry instead of overwriting each other.
type PostController struct {
	kv          appDb.KVStore
	log         *logrus.Logger
	maxAttempts int
	now         func() time.Time
	newId       func() string
}

func NewPostController(kv appDb.KVStore, log *logrus.Logger, opts *PostControllerOpts) *PostController {
	pc := &PostController{
		kv:          kv,
		log:         log,
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
		newId:       uuid.NewString,
	}
	if opts != nil {
		if opts.MaxAttempts > 0 {
			pc.maxAttempts = opts.MaxAttempts
		}
		if opts.Now != nil {
			pc.now = opts.Now
		}
		if opts.NewId != nil {
			pc.newId = opts.NewId
		}
	}
	return pc
}

func (pc *PostController) readCollection(ctx context.Context) ([]*model.Post, appDb.Version, error) {
	entry, err := pc.kv.GetEntry(ctx, PostsKey)
	if appDb.IsNotFound(err) {
		return []*model.Post{}, appDb.NoVersion, nil
	}
	if err != nil {
		return nil, appDb.NoVersion, err
	}
	var posts []*model.Post
	if err := json.Unmarshal(entry.Value, &posts); err != nil {
		return nil, appDb.NoVersion, errors.Wrap(err, "posts collection is corrupt")
	}
	if posts == nil {
		posts = []*model.Post{}
	}
	return posts, entry.Version, nil
}

// ListPosts returns the requested window. The first read of an empty store creates the collection.
func (pc *PostController) ListPosts(ctx context.Context, page app.PageOpts) ([]*model.Post, error) {
	posts, version, err := pc.readCollection(ctx)
	if err != nil {
		return nil, app.StorageError("Could not read posts", err)
	}
	if version == appDb.NoVersion {
		err := pc.kv.CompareAndSwap(ctx, PostsKey, []byte("[]"), nil, appDb.NoVersion)
		// losing this race means someone else created it, which is all we wanted
		if err != nil && !appDb.IsConflict(err) {
			return nil, app.StorageError("Could not initialize posts", err)
		}
	}
	return page.Window(posts), nil
}

func (pc *PostController) CreatePost(ctx context.Context, draft *model.Post) (*model.Post, error) {
	post := pc.prepareNewPost(draft)
	err := pc.updateCollection(ctx, func(posts []*model.Post) ([]*model.Post, error) {
		return append([]*model.Post{post}, posts...), nil
	})
	if err != nil {
		return nil, err
	}
	pc.log.WithFields(logrus.Fields{"postId": post.Id, "username": post.Username}).Info("post created")
	return post, nil
}

func (pc *PostController) AppendReply(ctx context.Context, postId string, draft *model.Reply) (*model.Post, error) {
	reply := pc.prepareNewReply(draft)
	var updated *model.Post
	err := pc.updateCollection(ctx, func(posts []*model.Post) ([]*model.Post, error) {
		for _, post := range posts {
			if post.Id == postId {
				post.Replies = append(post.Replies, reply)
				updated = post
				return posts, nil
			}
		}
		return nil, app.NotFoundError("post id does not exist")
	})
	if err != nil {
		return nil, err
	}
	pc.log.WithFields(logrus.Fields{"postId": postId, "replyId": reply.Id}).Info("reply appended")
	return updated, nil
}

// updateCollection reads the collection, applies mutate and writes it back only if nobody else
// wrote in between. mutate runs once per attempt against a fresh copy.
func (pc *PostController) updateCollection(ctx context.Context, mutate func([]*model.Post) ([]*model.Post, error)) error {
	err := retryOnConflict(ctx, pc.maxAttempts, func() error {
		posts, version, err := pc.readCollection(ctx)
		if err != nil {
			return err
		}
		posts, err = mutate(posts)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(posts)
		if err != nil {
			return errors.Wrap(err, "error encoding posts")
		}
		return pc.kv.CompareAndSwap(ctx, PostsKey, encoded, nil, version)
	})
	if err == nil {
		return nil
	}
	if app.KindOf(err) != "" {
		return err
	}
	if appDb.IsConflict(err) {
		pc.log.WithError(err).Warn("posts collection stayed contended")
	}
	return app.StorageError("Could not write posts", err)
}

func (pc *PostController) prepareNewPost(draft *model.Post) *model.Post {
	now := pc.now().UTC()
	post := &model.Post{
		Username:  draft.Username,
		Content:   draft.Content,
		Title:     draft.Title,
		Id:        pc.newId(),
		Timestamp: &now,
		Embed:     draft.Embed,
		Author:    defaultAuthor(draft.Author, draft.Username),
		Replies:   []*model.Reply{},
		Style:     draft.Style,
	}
	if post.Title == "" {
		post.Title = post.Content
	}
	return post
}

func (pc *PostController) prepareNewReply(draft *model.Reply) *model.Reply {
	now := pc.now().UTC()
	username := ""
	if draft.Author != nil {
		username = draft.Author.Username
	}
	return &model.Reply{
		Id:        pc.newId(),
		Author:    defaultAuthor(draft.Author, username),
		Content:   draft.Content,
		Timestamp: &now,
	}
}

func defaultAuthor(author *model.Author, username string) *model.Author {
	if author == nil {
		return &model.Author{
			Username: username,
			Name:     username,
			Avatar:   util.Avatar(username),
		}
	}
	out := *author
	if out.Name == "" {
		out.Name = out.Username
	}
	if out.Avatar == "" {
		out.Avatar = util.Avatar(out.Username)
	}
	return &out
}
