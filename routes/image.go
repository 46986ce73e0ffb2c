package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/navbryce/feed-be/services"
	"github.com/navbryce/feed-be/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var imageNotFoundHTTPErr = util.HTTPError{
	Status:                http.StatusNotFound,
	Message:               "Image Not Found",
	AdditionalInformation: "No image is stored under that id",
}

type imageRoutes struct {
	images services.ImageStore
	log    *logrus.Logger
}

func AddImageRoutes(group *gin.RouterGroup, images services.ImageStore, log *logrus.Logger) {
	routes := imageRoutes{images: images, log: log}
	group.GET("/images/:id", routes.getImage)
}

// getImage writes raw bytes, so it bypasses HandlerWrapper on success.
func (ir *imageRoutes) getImage(c *gin.Context) {
	image, err := ir.images.Retrieve(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrImageNotFound) {
		notFound := imageNotFoundHTTPErr
		util.RespondError(c, &notFound)
		return
	}
	if err != nil {
		ir.log.WithError(err).WithField("imageId", c.Param("id")).Error("error retrieving image")
		internal := util.InternalHTTPErr
		util.RespondError(c, &internal)
		return
	}
	for k, v := range util.CORSHeaders {
		c.Header(k, v)
	}
	c.Data(http.StatusOK, image.ContentType, image.Data)
}
