package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrIssueRejected  = errors.New("identity service refused to issue a credential")
	ErrMissingCookie  = errors.New("identity service response carried no session cookie")
	ErrVerifyRejected = errors.New("identity service rejected the credential")
)

// IdentityClient talks to the external identity service:
// GET /auth/{username} issues a session cookie, GET /verify maps a cookie back to its username.
type IdentityClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

func NewIdentityClient(baseURL string, timeout time.Duration, log *logrus.Logger) *IdentityClient {
	return &IdentityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (ic *IdentityClient) Issue(ctx context.Context, username string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%v/auth/%v", ic.baseURL, url.PathEscape(username)), nil)
	if err != nil {
		return "", err
	}
	res, err := ic.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "error calling identity issue endpoint")
	}
	defer drain(res)

	ic.log.WithFields(logrus.Fields{"username": username, "status": res.StatusCode}).Debug("identity issue call returned")
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", errors.Wrapf(ErrIssueRejected, "status %v", res.StatusCode)
	}
	cookie := res.Header.Get("Set-Cookie")
	if cookie == "" {
		return "", ErrMissingCookie
	}
	return cookie, nil
}

func (ic *IdentityClient) Verify(ctx context.Context, cookie string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ic.baseURL+"/verify", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cookie", cookie)
	res, err := ic.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "error calling identity verify endpoint")
	}
	defer drain(res)

	ic.log.WithField("status", res.StatusCode).Debug("identity verify call returned")
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", errors.Wrapf(ErrVerifyRejected, "status %v", res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return "", errors.Wrap(err, "error reading verify response")
	}
	return string(body), nil
}

func drain(res *http.Response) {
	io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
	res.Body.Close()
}
