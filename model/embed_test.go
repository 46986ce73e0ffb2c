package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedDecodesByType(t *testing.T) {
	var image Embed
	require.NoError(t, json.Unmarshal([]byte(`{"type":"image","image":"https://x/cat.png"}`), &image))
	require.NotNil(t, image.Image)
	assert.Nil(t, image.Link)
	assert.Equal(t, "https://x/cat.png", image.Image.Image)
	assert.True(t, image.ShapeMatches())

	var link Embed
	require.NoError(t, json.Unmarshal([]byte(`{"type":"link","title":"Go","link":{"title":"go.dev","href":"https://go.dev"}}`), &link))
	require.NotNil(t, link.Link)
	assert.Nil(t, link.Image)
	assert.Equal(t, "https://go.dev", link.Link.Link.Href)

	var unknown Embed
	require.NoError(t, json.Unmarshal([]byte(`{"type":"video","src":"x"}`), &unknown))
	assert.Nil(t, unknown.Image)
	assert.Nil(t, unknown.Link)
	assert.False(t, unknown.ShapeMatches())
}

func TestEmbedEncodesFlat(t *testing.T) {
	encoded, err := json.Marshal(NewImageEmbed("https://x/cat.png"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"image","image":"https://x/cat.png"}`, string(encoded))

	encoded, err = json.Marshal(NewLinkEmbed(LinkEmbed{Title: "Go", Link: LinkTarget{Title: "go.dev", Href: "https://go.dev"}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"link","title":"Go","link":{"title":"go.dev","href":"https://go.dev"}}`, string(encoded))

	_, err = json.Marshal(&Embed{Type: EmbedTypeImage})
	assert.Error(t, err)
}

func TestPostStyleIsOpaque(t *testing.T) {
	var post Post
	require.NoError(t, json.Unmarshal([]byte(`{"username":"ada","content":"c","title":"t","style":{"font":{"size":12}}}`), &post))
	encoded, err := json.Marshal(&post)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"ada","content":"c","title":"t","replies":null,"style":{"font":{"size":12}}}`, string(encoded))
}

func TestUserRegistryContains(t *testing.T) {
	registry := UserRegistry{"ada", "bob"}
	assert.True(t, registry.Contains("bob"))
	assert.False(t, registry.Contains("eve"))
}
