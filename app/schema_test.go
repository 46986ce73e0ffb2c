package app

import (
	"errors"
	"testing"

	"github.com/navbryce/feed-be/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, KindValidation, appErr.Kind)
	return appErr.Message
}

func validPost() *model.Post {
	return &model.Post{Username: "ada", Content: "hello", Title: "greeting"}
}

func TestValidatePostAcceptsMinimalPost(t *testing.T) {
	assert.NoError(t, NewValidator().ValidatePost(validPost()))
}

func TestValidatePostRequiredFields(t *testing.T) {
	v := NewValidator()
	tests := []struct {
		name    string
		mutate  func(p *model.Post)
		message string
	}{
		{"username", func(p *model.Post) { p.Username = "" }, "The username is required"},
		{"content", func(p *model.Post) { p.Content = "" }, "The content is required"},
		{"title", func(p *model.Post) { p.Title = "" }, "The title is required"},
		{"author name", func(p *model.Post) { p.Author = &model.Author{Username: "ada"} }, "The author.name is required"},
		{"author username", func(p *model.Post) { p.Author = &model.Author{Name: "Ada"} }, "The author.username is required"},
		{"reply author", func(p *model.Post) { p.Replies = []*model.Reply{{Content: "hi"}} }, "The replies[0].author is required"},
		{"reply content", func(p *model.Post) {
			p.Replies = []*model.Reply{{Author: &model.Author{Username: "bob", Name: "Bob"}}}
		}, "The replies[0].content is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := validPost()
			tt.mutate(post)
			assert.Equal(t, tt.message, validationMessage(t, v.ValidatePost(post)))
		})
	}
}

func TestValidatePostReportsFirstFailureOnly(t *testing.T) {
	err := NewValidator().ValidatePost(&model.Post{})
	assert.Equal(t, "The username is required", validationMessage(t, err))
}

func TestValidatePostEmbeds(t *testing.T) {
	v := NewValidator()

	post := validPost()
	post.Embed = model.NewImageEmbed("https://example.com/cat.png")
	assert.NoError(t, v.ValidatePost(post))

	post.Embed = model.NewLinkEmbed(model.LinkEmbed{
		Title: "Go",
		Link:  model.LinkTarget{Title: "go.dev", Href: "https://go.dev"},
	})
	assert.NoError(t, v.ValidatePost(post))

	post.Embed = &model.Embed{Type: "video"}
	assert.Equal(t, "The embed.type must be one of: image, link", validationMessage(t, v.ValidatePost(post)))

	post.Embed = &model.Embed{Type: model.EmbedTypeImage, Link: &model.LinkEmbed{
		Title: "Go",
		Link:  model.LinkTarget{Title: "go.dev", Href: "https://go.dev"},
	}}
	assert.Equal(t, "The embed does not match the image embed shape", validationMessage(t, v.ValidatePost(post)))

	post.Embed = model.NewImageEmbed("")
	assert.Equal(t, "The embed.image.image is required", validationMessage(t, v.ValidatePost(post)))
}

func TestValidatePostEmbedFromJSON(t *testing.T) {
	post, err := DecodePost([]byte(`{"username":"ada","content":"c","title":"t","embed":{"type":"link","title":"Go","link":{"title":"go.dev"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "The embed.link.link.href is required", validationMessage(t, NewValidator().ValidatePost(post)))
}

func TestValidateReply(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateReply(&model.Reply{Author: &model.Author{Username: "bob", Name: "Bob"}, Content: "hi"}))
	assert.Equal(t, "The author is required", validationMessage(t, v.ValidateReply(&model.Reply{Content: "hi"})))
	assert.Equal(t, "The reply is required", validationMessage(t, v.ValidateReply(nil)))
	assert.Equal(t, "The post is required", validationMessage(t, v.ValidatePost(nil)))
}
