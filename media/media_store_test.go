package media

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostImageKey(t *testing.T) {
	key := PostImageKey("Hello World!", "Photo.JPG")
	assert.Regexp(t,
		regexp.MustCompile(`^uploads/images/posts/hello-world-[0-9a-f-]{36}\.jpg$`),
		key)

	assert.NotEqual(t, key, PostImageKey("Hello World!", "Photo.JPG"))

	noSlug := PostImageKey("???", "a.png")
	assert.Regexp(t, regexp.MustCompile(`^uploads/images/posts/[0-9a-f-]{36}\.png$`), noSlug)
}

func TestLocalMediaStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalMediaStore(dir, "http://localhost:8080/media/")
	require.Nil(t, err)

	key := PostImageKey("hello", "a.png")
	require.Nil(t, s.Put(context.Background(), key, strings.NewReader("png-bytes"), "image/png"))

	data, err := ioutil.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.Nil(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "http://localhost:8080/media/"+key, s.GetUrlFromKey(key))
	assert.Equal(t, "", s.GetUrlFromKey(""))

	require.Nil(t, s.Delete(context.Background(), key))
	require.Nil(t, s.Delete(context.Background(), key))
}

func TestFakeMediaStore(t *testing.T) {
	s := NewFakeMediaStore()
	require.Nil(t, s.Put(context.Background(), "k", strings.NewReader("v"), "text/plain"))
	data, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", string(data))
	require.Nil(t, s.Delete(context.Background(), "k"))
	_, ok = s.Get("k")
	assert.False(t, ok)
}
