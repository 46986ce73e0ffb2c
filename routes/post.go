package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/navbryce/feed-be/app"
	"github.com/navbryce/feed-be/controllers"
	"github.com/navbryce/feed-be/middleware"
	"github.com/navbryce/feed-be/util"
	"github.com/sirupsen/logrus"
)

type postRoutes struct {
	postController *controllers.PostController
	authController *controllers.AuthController
	ingestor       *app.Ingestor
	validator      *app.Validator
	log            *logrus.Logger
}

func AddPostRoutes(group *gin.RouterGroup, postController *controllers.PostController, authController *controllers.AuthController, ingestor *app.Ingestor, validator *app.Validator, log *logrus.Logger) {
	routes := postRoutes{
		postController: postController,
		authController: authController,
		ingestor:       ingestor,
		validator:      validator,
		log:            log,
	}
	posts := group.Group("/posts")
	posts.GET("", util.HandlerWrapper(routes.getPosts, &util.HandlerOpts{}))
	posts.POST("", util.HandlerWrapper(routes.createPost, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	posts.POST("/:id/replies", util.HandlerWrapper(routes.createReply, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
}

func (pr *postRoutes) getPosts(c *gin.Context) (interface{}, *util.HTTPError) {
	limit, httpErr := util.ParseNonNegativeInt("number", c.Query("number"))
	if httpErr != nil {
		return nil, httpErr
	}
	offset, httpErr := util.ParseNonNegativeInt("offset", c.Query("offset"))
	if httpErr != nil {
		return nil, httpErr
	}
	page := app.PageOpts{Limit: limit}
	if offset != nil {
		page.Offset = *offset
	}

	posts, err := pr.postController.ListPosts(c.Request.Context(), page)
	if err != nil {
		return nil, toHTTPError(pr.log, err)
	}
	return posts, nil
}

func (pr *postRoutes) createPost(c *gin.Context) (interface{}, *util.HTTPError) {
	draft, err := pr.ingestor.Ingest(c.Request)
	if err != nil {
		return nil, toHTTPError(pr.log, err)
	}
	if err := pr.validator.ValidatePost(draft); err != nil {
		return nil, toHTTPError(pr.log, err)
	}
	cookie, err := pr.authController.Authenticate(c.Request.Context(), draft.Username, middleware.InboundCookie(c))
	if err != nil {
		return nil, toHTTPError(pr.log, err)
	}
	post, err := pr.postController.CreatePost(c.Request.Context(), draft)
	if err != nil {
		return nil, toHTTPError(pr.log, err)
	}
	return &util.Response{Body: post, Headers: middleware.SetCookieHeaders(cookie)}, nil
}

func (pr *postRoutes) createReply(c *gin.Context) (interface{}, *util.HTTPError) {
	postId := c.Param("id")
	if postId == "" {
		return nil, toHTTPError(pr.log, app.NotFoundError("post id does not exist"))
	}
	body, err := c.GetRawData()
	if err != nil {
		return nil, toHTTPError(pr.log, app.InvalidJsonError("Request body could not be read", err))
	}
	draft, err := app.DecodeReply(body)
	if err != nil {
		return nil, toHTTPError(pr.log, err)
	}
	if err := pr.validator.ValidateReply(draft); err != nil {
		return nil, toHTTPError(pr.log, err)
	}
	post, err := pr.postController.AppendReply(c.Request.Context(), postId, draft)
	if err != nil {
		return nil, toHTTPError(pr.log, err)
	}
	return post, nil
}
