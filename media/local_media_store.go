package media

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalMediaStore writes blobs under a local folder, for development.
type LocalMediaStore struct {
	folderName string
	urlPrefix  string
}

func NewLocalMediaStore(folderName string, urlPrefix string) (*LocalMediaStore, error) {
	if err := os.MkdirAll(folderName, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalMediaStore{folderName: folderName, urlPrefix: urlPrefix}, nil
}

func (s *LocalMediaStore) path(key string) string {
	return filepath.Join(s.folderName, filepath.FromSlash(key))
}

func (s *LocalMediaStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	localPath := s.path(key)
	if err := os.MkdirAll(filepath.Dir(localPath), os.ModePerm); err != nil {
		return err
	}

	file, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	// Use io.Copy to just dump the body to the file. This supports huge files
	_, err = io.Copy(file, body)
	return errors.Wrapf(err, "fail to write %s", key)
}

func (s *LocalMediaStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalMediaStore) GetUrlFromKey(key string) string {
	if key == "" {
		return ""
	}
	return s.urlPrefix + key
}

// CleanUp removes the whole folder.
func (s *LocalMediaStore) CleanUp() {
	os.RemoveAll(s.folderName)
}
