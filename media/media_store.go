// Package media stores post images in a blob store keyed by a generated path.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Luismorlan/socialmux/utils"
	"github.com/google/uuid"
)

const PostImagePrefix = "uploads/images/posts/"

// MediaStore is the blob store post images are written to.
type MediaStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	GetUrlFromKey(key string) string
}

// PostImageKey builds the blob key of a post image:
// uploads/images/posts/<slugified title>-<uuid><ext of the uploaded file>.
func PostImageKey(title string, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	slug := utils.Slugify(title)
	if slug == "" {
		return fmt.Sprintf("%s%s%s", PostImagePrefix, uuid.New().String(), ext)
	}
	return fmt.Sprintf("%s%s-%s%s", PostImagePrefix, slug, uuid.New().String(), ext)
}
