package model

import (
	"encoding/json"
	"errors"
)

type EmbedType string

const (
	EmbedTypeImage EmbedType = "image"
	EmbedTypeLink  EmbedType = "link"
)

var ErrEmbedShapeMismatch = errors.New("embed carries a shape other than its type")

type ImageEmbed struct {
	Image string `json:"image" validate:"required"`
}

type LinkTarget struct {
	Title string `json:"title" validate:"required"`
	Href  string `json:"href" validate:"required"`
}

type LinkEmbed struct {
	Title string     `json:"title" validate:"required"`
	Image string     `json:"image,omitempty"`
	Link  LinkTarget `json:"link"`
}

// Embed is a tagged union: Type selects which of Image or Link is set.
// An unknown Type decodes with neither set so the validator can reject it.
type Embed struct {
	Type  EmbedType   `json:"type" validate:"oneof=image link"`
	Image *ImageEmbed `json:"-"`
	Link  *LinkEmbed  `json:"-"`
}

func NewImageEmbed(url string) *Embed {
	return &Embed{Type: EmbedTypeImage, Image: &ImageEmbed{Image: url}}
}

func NewLinkEmbed(link LinkEmbed) *Embed {
	return &Embed{Type: EmbedTypeLink, Link: &link}
}

// ShapeMatches reports whether exactly the variant named by Type is present.
func (e *Embed) ShapeMatches() bool {
	switch e.Type {
	case EmbedTypeImage:
		return e.Image != nil && e.Link == nil
	case EmbedTypeLink:
		return e.Link != nil && e.Image == nil
	default:
		return false
	}
}

func (e *Embed) UnmarshalJSON(data []byte) error {
	if e == nil {
		return nil
	}
	var rawWithType struct {
		Type EmbedType `json:"type"`
	}
	if err := json.Unmarshal(data, &rawWithType); err != nil {
		return err
	}

	*e = Embed{Type: rawWithType.Type}
	switch rawWithType.Type {
	case EmbedTypeImage:
		e.Image = &ImageEmbed{}
		return json.Unmarshal(data, e.Image)
	case EmbedTypeLink:
		e.Link = &LinkEmbed{}
		return json.Unmarshal(data, e.Link)
	}
	return nil
}

func (e *Embed) MarshalJSON() ([]byte, error) {
	if !e.ShapeMatches() {
		return nil, ErrEmbedShapeMismatch
	}
	switch e.Type {
	case EmbedTypeImage:
		return json.Marshal(&struct {
			Type EmbedType `json:"type"`
			*ImageEmbed
		}{e.Type, e.Image})
	default:
		return json.Marshal(&struct {
			Type EmbedType `json:"type"`
			*LinkEmbed
		}{e.Type, e.Link})
	}
}
