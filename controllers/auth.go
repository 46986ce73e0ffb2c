package controllers

import (
	"context"
	"encoding/json"

	"github.com/navbryce/feed-be/app"
	appDb "github.com/navbryce/feed-be/db"
	"github.com/navbryce/feed-be/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const UsersKey = "users"

// hardenedCookieAttrs are appended to a verified cookie before it is handed back to the client.
const hardenedCookieAttrs = "; HttpOnly; Secure; Path=/"

// AuthProvider is the identity service as the auth delegate sees it.
type AuthProvider interface {
	Issue(ctx context.Context, username string) (cookie string, err error)
	Verify(ctx context.Context, cookie string) (username string, err error)
}

// AuthController binds session cookies to usernames. Trust is on first use: a username never seen
// before gets a fresh cookie from the provider; a known username must present a cookie the provider
// maps back to the same username. The cookie itself is never checked locally.
type AuthController struct {
	kv          appDb.KVStore
	provider    AuthProvider
	log         *logrus.Logger
	maxAttempts int
}

func NewAuthController(kv appDb.KVStore, provider AuthProvider, log *logrus.Logger, maxAttempts int) *AuthController {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &AuthController{kv: kv, provider: provider, log: log, maxAttempts: maxAttempts}
}

// Authenticate returns the Set-Cookie value for a successful request.
func (ac *AuthController) Authenticate(ctx context.Context, username, cookie string) (string, error) {
	registry, _, err := ac.readRegistry(ctx)
	if err != nil {
		return "", app.StorageError("Could not read users", err)
	}
	logger := ac.log.WithField("username", username)

	if !registry.Contains(username) {
		issued, err := ac.provider.Issue(ctx, username)
		if err != nil {
			logger.WithError(err).Info("identity service did not issue a credential")
			return "", app.AuthError("Unable to generate a credential for user", err)
		}
		if err := ac.register(ctx, username); err != nil {
			return "", app.StorageError("Could not register user", err)
		}
		logger.Info("registered new user")
		return issued, nil
	}

	if cookie == "" {
		return "", app.AuthError("no credential supplied", nil)
	}
	boundTo, err := ac.provider.Verify(ctx, cookie)
	if err != nil {
		logger.WithError(err).Info("identity service rejected credential")
		return "", app.AuthError("credential is invalid", err)
	}
	if boundTo != username {
		logger.WithField("boundTo", boundTo).Warn("credential belongs to a different user")
		return "", app.AuthError("credential/user mismatch", nil)
	}
	return cookie + hardenedCookieAttrs, nil
}

func (ac *AuthController) readRegistry(ctx context.Context) (model.UserRegistry, appDb.Version, error) {
	entry, err := ac.kv.GetEntry(ctx, UsersKey)
	if appDb.IsNotFound(err) {
		return model.UserRegistry{}, appDb.NoVersion, nil
	}
	if err != nil {
		return nil, appDb.NoVersion, err
	}
	var registry model.UserRegistry
	if err := json.Unmarshal(entry.Value, &registry); err != nil {
		return nil, appDb.NoVersion, errors.Wrap(err, "users registry is corrupt")
	}
	return registry, entry.Version, nil
}

func (ac *AuthController) register(ctx context.Context, username string) error {
	return retryOnConflict(ctx, ac.maxAttempts, func() error {
		registry, version, err := ac.readRegistry(ctx)
		if err != nil {
			return err
		}
		if registry.Contains(username) {
			return nil
		}
		encoded, err := json.Marshal(append(registry, username))
		if err != nil {
			return err
		}
		return ac.kv.CompareAndSwap(ctx, UsersKey, encoded, nil, version)
	})
}
