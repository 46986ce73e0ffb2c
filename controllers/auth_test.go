package controllers

import (
	"context"
	"errors"
	"testing"

	"github.com/navbryce/feed-be/app"
	"github.com/navbryce/feed-be/db/memory"
	"github.com/navbryce/feed-be/model"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider issues "session=<username>" and verifies by reading the username back out.
type fakeProvider struct {
	issued     []string
	issueErr   error
	verifyErr  error
	verifiedAs string
}

func (fp *fakeProvider) Issue(_ context.Context, username string) (string, error) {
	if fp.issueErr != nil {
		return "", fp.issueErr
	}
	fp.issued = append(fp.issued, username)
	return "session=" + username, nil
}

func (fp *fakeProvider) Verify(_ context.Context, cookie string) (string, error) {
	if fp.verifyErr != nil {
		return "", fp.verifyErr
	}
	if fp.verifiedAs != "" {
		return fp.verifiedAs, nil
	}
	return cookie[len("session="):], nil
}

func newTestAuthController(provider AuthProvider) (*AuthController, *memory.Store) {
	logger, _ := test.NewNullLogger()
	kv := memory.NewStore()
	return NewAuthController(kv, provider, logger, 0), kv
}

func TestAuthenticateFirstUseRegisters(t *testing.T) {
	provider := &fakeProvider{}
	ac, kv := newTestAuthController(provider)
	ctx := context.Background()

	cookie, err := ac.Authenticate(ctx, "ada", "")
	require.NoError(t, err)
	assert.Equal(t, "session=ada", cookie)
	assert.Equal(t, []string{"ada"}, provider.issued)

	registry, _, err := ac.readRegistry(ctx)
	require.NoError(t, err)
	assert.True(t, registry.Contains("ada"))

	raw, err := kv.Get(ctx, UsersKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["ada"]`, string(raw))
}

func TestAuthenticateKnownUser(t *testing.T) {
	provider := &fakeProvider{}
	ac, _ := newTestAuthController(provider)
	ctx := context.Background()
	_, err := ac.Authenticate(ctx, "ada", "")
	require.NoError(t, err)

	cookie, err := ac.Authenticate(ctx, "ada", "session=ada")
	require.NoError(t, err)
	assert.Equal(t, "session=ada; HttpOnly; Secure; Path=/", cookie)
	assert.Len(t, provider.issued, 1)
}

func TestAuthenticateKnownUserFailures(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		provider *fakeProvider
		cookie   string
		message  string
	}{
		{name: "no cookie", provider: &fakeProvider{}, cookie: "", message: "no credential supplied"},
		{name: "rejected", provider: &fakeProvider{verifyErr: errors.New("401")}, cookie: "session=ada", message: "credential is invalid"},
		{name: "someone else", provider: &fakeProvider{verifiedAs: "mallory"}, cookie: "session=mallory", message: "credential/user mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac, kv := newTestAuthController(tt.provider)
			require.NoError(t, kv.Put(ctx, UsersKey, []byte(`["ada"]`), nil))

			_, err := ac.Authenticate(ctx, "ada", tt.cookie)
			require.Error(t, err)
			assert.Equal(t, app.KindAuth, app.KindOf(err))
			var appErr *app.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestAuthenticateIssueFailureDoesNotRegister(t *testing.T) {
	ac, _ := newTestAuthController(&fakeProvider{issueErr: errors.New("identity down")})
	ctx := context.Background()

	_, err := ac.Authenticate(ctx, "ada", "")
	require.Error(t, err)
	assert.Equal(t, app.KindAuth, app.KindOf(err))

	registry, _, err := ac.readRegistry(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.UserRegistry{}, registry)
}

func TestAuthenticateCorruptRegistry(t *testing.T) {
	ac, kv := newTestAuthController(&fakeProvider{})
	require.NoError(t, kv.Put(context.Background(), UsersKey, []byte("nope"), nil))

	_, err := ac.Authenticate(context.Background(), "ada", "")
	require.Error(t, err)
	assert.Equal(t, app.KindStorage, app.KindOf(err))
}
