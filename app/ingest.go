package app

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/navbryce/feed-be/model"
	"github.com/navbryce/feed-be/util"
)

const (
	defaultMaxUploadBytes = 10 << 20
	defaultImageType      = "application/octet-stream"
)

// ImageUploader stores raw image bytes and returns a URL-shaped reference to them.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (url string, err error)
}

// Ingestor turns an inbound request into a draft post. It neither authenticates nor persists;
// the only side effect is the image upload on the multipart path.
type Ingestor struct {
	images         ImageUploader
	maxUploadBytes int64
}

func NewIngestor(images ImageUploader, maxUploadBytes int64) *Ingestor {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Ingestor{images: images, maxUploadBytes: maxUploadBytes}
}

func (i *Ingestor) Ingest(req *http.Request) (*model.Post, error) {
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return i.fromMultipart(req)
	}
	return i.fromJSON(req)
}

func (i *Ingestor) fromJSON(req *http.Request) (*model.Post, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, InvalidJsonError("JSON was not sent with the request", nil)
	}
	body, err := io.ReadAll(io.LimitReader(req.Body, i.maxUploadBytes))
	if err != nil {
		return nil, InvalidJsonError("Request body could not be read", err)
	}
	return DecodePost(body)
}

// DecodePost parses a JSON post. An empty body, malformed JSON and a literal null are all rejected.
func DecodePost(body []byte) (*model.Post, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, InvalidJsonError("JSON was not sent with the request", nil)
	}
	var post *model.Post
	if err := json.Unmarshal(body, &post); err != nil {
		return nil, InvalidJsonError("JSON has an invalid structure", err)
	}
	if post == nil {
		return nil, InvalidJsonError("JSON is null - JSON has an invalid structure", nil)
	}
	sanitizePost(post)
	return post, nil
}

// DecodeReply parses a JSON reply with the same rules as DecodePost.
func DecodeReply(body []byte) (*model.Reply, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, InvalidJsonError("JSON was not sent with the request", nil)
	}
	var reply *model.Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, InvalidJsonError("JSON has an invalid structure", err)
	}
	if reply == nil {
		return nil, InvalidJsonError("JSON is null - JSON has an invalid structure", nil)
	}
	sanitizeReply(reply)
	return reply, nil
}

// sanitizePost cleans user-supplied text in place. It runs before validation so required
// fields that sanitize to nothing are rejected rather than stored empty.
func sanitizePost(post *model.Post) {
	post.Content = util.XSSSanitize(post.Content)
	post.Title = util.XSSSanitize(post.Title)
	sanitizeAuthor(post.Author)
	for _, reply := range post.Replies {
		sanitizeReply(reply)
	}
}

func sanitizeReply(reply *model.Reply) {
	if reply == nil {
		return
	}
	reply.Content = util.XSSSanitize(reply.Content)
	sanitizeAuthor(reply.Author)
}

func sanitizeAuthor(author *model.Author) {
	if author != nil {
		author.Name = util.XSSSanitize(author.Name)
	}
}

func (i *Ingestor) fromMultipart(req *http.Request) (*model.Post, error) {
	req.Body = http.MaxBytesReader(nil, req.Body, i.maxUploadBytes)
	if err := req.ParseMultipartForm(i.maxUploadBytes); err != nil {
		return nil, FormDataError("Form data is empty or malformed", err)
	}
	form := req.MultipartForm
	if form == nil || (len(form.Value) == 0 && len(form.File) == 0) {
		return nil, FormDataError("Form data is empty", nil)
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		return nil, FormDataError("Form data is missing the image file", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, FormDataError("Image file could not be read", err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultImageType
	}

	url, err := i.images.Upload(req.Context(), data, contentType)
	if err != nil {
		return nil, ImageUploadError("Image upload failed", err)
	}

	username := req.FormValue("username")
	author := &model.Author{
		Username: username,
		Name:     req.FormValue("name"),
		Avatar:   req.FormValue("avatar"),
	}
	if author.Name == "" {
		author.Name = username
	}
	if author.Avatar == "" && username != "" {
		author.Avatar = util.Avatar(username)
	}

	post := &model.Post{
		Username: username,
		Content:  req.FormValue("content"),
		Title:    req.FormValue("title"),
		Embed:    model.NewImageEmbed(url),
		Author:   author,
		Replies:  []*model.Reply{},
	}
	sanitizePost(post)
	return post, nil
}
