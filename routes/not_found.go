package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/navbryce/feed-be/util"
)

// AddNotFound answers every unmatched path or method with the not-found envelope.
func AddNotFound(r *gin.Engine) {
	r.HandleMethodNotAllowed = false
	handler := func(c *gin.Context) {
		notFound := util.NotFoundHTTPErr
		util.RespondError(c, &notFound)
	}
	r.NoRoute(handler)
	r.NoMethod(handler)
}
