package media

import (
	"context"
	"io"
	"io/ioutil"
	"sync"
)

// FakeMediaStore keeps blobs in memory.
type FakeMediaStore struct {
	m     sync.Mutex
	Blobs map[string][]byte
}

func NewFakeMediaStore() *FakeMediaStore {
	return &FakeMediaStore{Blobs: make(map[string][]byte)}
}

func (s *FakeMediaStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := ioutil.ReadAll(body)
	if err != nil {
		return err
	}
	s.m.Lock()
	defer s.m.Unlock()
	s.Blobs[key] = data
	return nil
}

func (s *FakeMediaStore) Delete(ctx context.Context, key string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.Blobs, key)
	return nil
}

func (s *FakeMediaStore) Get(key string) ([]byte, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	data, ok := s.Blobs[key]
	return data, ok
}

func (s *FakeMediaStore) GetUrlFromKey(key string) string {
	return key
}
