package filestore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type localConfig struct {
	PublicURL string `json:"public_url"`
}

// localStore serves objects from a static base url, e.g. a public bucket or
// a reverse proxy in front of the upload directory.
type localStore struct {
	publicURL string
}

func init() {
	Register("local", createLocalStore)
}

func createLocalStore(args interface{}, _ time.Duration) (Store, error) {
	cfg := &localConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.PublicURL == "" {
		return nil, fmt.Errorf("local store public_url is required")
	}
	return &localStore{publicURL: strings.TrimSuffix(cfg.PublicURL, "/")}, nil
}

func (s *localStore) Type() string {
	return "local"
}

func (s *localStore) URL(_ context.Context, key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", fmt.Errorf("file key is required")
	}
	return s.publicURL + "/" + url.PathEscape(key), nil
}
