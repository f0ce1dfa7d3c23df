package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"bitesquicky/internal/logger"
)

const (
	menuImageBucket = "menu-images"
	maxImageSize    = 5 << 20
)

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// MenuItemInput carries the fields present in a create or update request.
// The *Set flags distinguish "absent" from a zero value.
type MenuItemInput struct {
	Title           string
	TitleSet        bool
	Description     string
	DescriptionSet  bool
	Price           int64
	PriceSet        bool
	Category        string
	CategorySet     bool
	IsNegotiable    bool
	IsNegotiableSet bool
	IsAvailable     bool
	IsAvailableSet  bool
	Pinned          bool
	PinnedSet       bool
	RemoveImage     bool
	Image           *multipart.FileHeader
}

type menuItemJSON struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Price        *int64  `json:"price"`
	Category     *string `json:"category"`
	IsNegotiable *bool   `json:"isNegotiable"`
	IsAvailable  *bool   `json:"isAvailable"`
	Pinned       *bool   `json:"pinned"`
	RemoveImage  bool    `json:"removeImage"`
}

// parseMenuItemRequest accepts multipart (with an optional "image" file) or JSON.
func parseMenuItemRequest(c *gin.Context) (MenuItemInput, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var body menuItemJSON
		if err := c.ShouldBindJSON(&body); err != nil {
			return MenuItemInput{}, err
		}
		return body.input(), nil
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		logger.Area("UPLOAD").Info("multipart parse failed", zap.Error(err))
		return MenuItemInput{}, err
	}

	input := MenuItemInput{}

	if value, ok := c.GetPostForm("title"); ok {
		input.Title = strings.TrimSpace(value)
		input.TitleSet = true
	}
	if value, ok := c.GetPostForm("description"); ok {
		input.Description = strings.TrimSpace(value)
		input.DescriptionSet = true
	}
	if value, ok := c.GetPostForm("category"); ok {
		input.Category = strings.ToLower(strings.TrimSpace(value))
		input.CategorySet = true
	}

	if value, ok := c.GetPostForm("price"); ok {
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return MenuItemInput{}, fmt.Errorf("price must be a whole number of shillings")
		}
		input.Price = parsed
		input.PriceSet = true
	}

	for _, f := range []struct {
		name string
		val  *bool
		set  *bool
	}{
		{"isNegotiable", &input.IsNegotiable, &input.IsNegotiableSet},
		{"isAvailable", &input.IsAvailable, &input.IsAvailableSet},
		{"pinned", &input.Pinned, &input.PinnedSet},
		{"removeImage", &input.RemoveImage, nil},
	} {
		values := c.PostFormArray(f.name)
		if len(values) == 0 {
			continue
		}
		// Checkbox forms send a hidden "false" followed by the checked value.
		parsed, err := parseBoolValue(values[len(values)-1])
		if err != nil {
			return MenuItemInput{}, fmt.Errorf("%s must be true or false", f.name)
		}
		*f.val = parsed
		if f.set != nil {
			*f.set = true
		}
	}

	file, err := c.FormFile("image")
	switch {
	case err == nil:
		if err := checkImage(file); err != nil {
			return MenuItemInput{}, err
		}
		input.Image = file
	case !errors.Is(err, http.ErrMissingFile):
		return MenuItemInput{}, err
	}

	return input, nil
}

func (b menuItemJSON) input() MenuItemInput {
	in := MenuItemInput{RemoveImage: b.RemoveImage}
	if b.Title != nil {
		in.Title, in.TitleSet = strings.TrimSpace(*b.Title), true
	}
	if b.Description != nil {
		in.Description, in.DescriptionSet = strings.TrimSpace(*b.Description), true
	}
	if b.Price != nil {
		in.Price, in.PriceSet = *b.Price, true
	}
	if b.Category != nil {
		in.Category, in.CategorySet = strings.ToLower(strings.TrimSpace(*b.Category)), true
	}
	if b.IsNegotiable != nil {
		in.IsNegotiable, in.IsNegotiableSet = *b.IsNegotiable, true
	}
	if b.IsAvailable != nil {
		in.IsAvailable, in.IsAvailableSet = *b.IsAvailable, true
	}
	if b.Pinned != nil {
		in.Pinned, in.PinnedSet = *b.Pinned, true
	}
	return in
}

func checkImage(file *multipart.FileHeader) error {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return fmt.Errorf("image file extension is required")
	}
	if _, ok := allowedImageExtensions[extension]; !ok {
		return fmt.Errorf("unsupported image type: %s", extension)
	}
	if file.Size > maxImageSize {
		return fmt.Errorf("image file too large (max 5MB)")
	}
	return nil
}

// saveImage stores an upload under a fresh name and returns its public URL.
func saveImage(blobs BlobStore, file *multipart.FileHeader) (string, error) {
	in, err := file.Open()
	if err != nil {
		return "", err
	}
	defer in.Close()

	name := primitive.NewObjectID().Hex() + strings.ToLower(filepath.Ext(file.Filename))
	return blobs.Upload(menuImageBucket, name, in)
}

func parseBoolValue(value string) (bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "on" {
		return true, nil
	}
	return strconv.ParseBool(value)
}
