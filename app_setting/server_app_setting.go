package app_setting

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"

	MediaBackendS3    = "s3"
	MediaBackendLocal = "local"
)

// This is the setting of the api server.
type ServerAppSetting struct {
	// Port the api server listens on.
	PORT int `yaml:"PORT"`
	// Trust the token as the caller's subject instead of asking Cognito. Never
	// set in production.
	BYPASS_AUTH bool `yaml:"BYPASS_AUTH"`
	// Either "postgres" or "memory". Memory store loses everything on restart.
	STORE_BACKEND string `yaml:"STORE_BACKEND"`
	// Either "s3" or "local".
	MEDIA_BACKEND string `yaml:"MEDIA_BACKEND"`
	S3_BUCKET     string `yaml:"S3_BUCKET"`
	S3_REGION     string `yaml:"S3_REGION"`
	// Prefix prepended to an image key to build its public url.
	MEDIA_URL_PREFIX string `yaml:"MEDIA_URL_PREFIX"`
	// Folder images are written to with the local media backend.
	LOCAL_MEDIA_DIR string `yaml:"LOCAL_MEDIA_DIR"`
	// Cache the hashtag listing in redis.
	ENABLE_REDIS_CACHE bool `yaml:"ENABLE_REDIS_CACHE"`
	// Address of the statsd agent, metrics are dropped when empty.
	STATSD_ADDRESS string `yaml:"STATSD_ADDRESS"`
	// Upper bound of an uploaded image in bytes.
	MAX_UPLOAD_BYTES int64 `yaml:"MAX_UPLOAD_BYTES"`
}

func defaultServerAppSetting() ServerAppSetting {
	return ServerAppSetting{
		PORT:             8080,
		STORE_BACKEND:    StoreBackendPostgres,
		MEDIA_BACKEND:    MediaBackendLocal,
		MEDIA_URL_PREFIX: "/media/",
		LOCAL_MEDIA_DIR:  "media_files",
		MAX_UPLOAD_BYTES: 10 << 20,
	}
}

// ParseServerAppSetting reads the yaml at path over the defaults.
func ParseServerAppSetting(path string) (ServerAppSetting, error) {
	c := defaultServerAppSetting()
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "fail to read app setting")
	}
	if err = yaml.Unmarshal(yamlFile, &c); err != nil {
		return c, errors.Wrap(err, "fail to unmarshal app setting")
	}
	if err = c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c ServerAppSetting) validate() error {
	switch c.STORE_BACKEND {
	case StoreBackendPostgres, StoreBackendMemory:
	default:
		return errors.Errorf("unknown STORE_BACKEND %q", c.STORE_BACKEND)
	}
	switch c.MEDIA_BACKEND {
	case MediaBackendLocal:
	case MediaBackendS3:
		if c.S3_BUCKET == "" || c.S3_REGION == "" {
			return errors.New("S3_BUCKET and S3_REGION are required by the s3 media backend")
		}
	default:
		return errors.Errorf("unknown MEDIA_BACKEND %q", c.MEDIA_BACKEND)
	}
	return nil
}
