package routes

import (
	"errors"
	"net/http"

	"github.com/navbryce/feed-be/app"
	"github.com/navbryce/feed-be/util"
	"github.com/sirupsen/logrus"
)

// toHTTPError maps a domain failure onto the client envelope. Server-side failures are logged in full and
// cross the boundary only as a generic message.
func toHTTPError(log *logrus.Logger, err error) *util.HTTPError {
	var appErr *app.Error
	if !errors.As(err, &appErr) {
		log.WithError(err).Error("unclassified failure")
		internal := util.InternalHTTPErr
		return &internal
	}

	switch appErr.Kind {
	case app.KindInvalidJson:
		return &util.HTTPError{Status: http.StatusBadRequest, Message: "Invalid Json", AdditionalInformation: appErr.Message}
	case app.KindValidation:
		return &util.HTTPError{Status: http.StatusBadRequest, Message: "Invalid Json", AdditionalInformation: "Schema error: " + appErr.Message}
	case app.KindFormData:
		return &util.HTTPError{Status: http.StatusBadRequest, Message: "Invalid Form Data", AdditionalInformation: appErr.Message}
	case app.KindNotFound:
		return &util.HTTPError{Status: http.StatusBadRequest, Message: appErr.Message}
	case app.KindAuth:
		log.WithError(err).Info("request failed authentication")
		return &util.HTTPError{Status: http.StatusUnauthorized, Message: "Unauthorized", AdditionalInformation: appErr.Message}
	case app.KindImageUpload:
		log.WithError(err).Error("image upload failed")
		return &util.HTTPError{Status: http.StatusInternalServerError, Message: "Internal Server Error", AdditionalInformation: appErr.Message}
	case app.KindStorage:
		log.WithError(err).Error("storage failure")
		return &util.HTTPError{Status: http.StatusInternalServerError, Message: "Internal Server Error", AdditionalInformation: appErr.Message}
	}
	log.WithError(err).Error("unclassified failure")
	internal := util.InternalHTTPErr
	return &internal
}
