package app_setting

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSetting(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "setting.yaml")
	require.Nil(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseShippedSettings(t *testing.T) {
	prod, err := ParseServerAppSetting("server_app_setting.yaml")
	require.Nil(t, err)
	assert.Equal(t, StoreBackendPostgres, prod.STORE_BACKEND)
	assert.Equal(t, MediaBackendS3, prod.MEDIA_BACKEND)
	assert.False(t, prod.BYPASS_AUTH)

	dev, err := ParseServerAppSetting("server_app_setting_dev.yaml")
	require.Nil(t, err)
	assert.Equal(t, StoreBackendMemory, dev.STORE_BACKEND)
	assert.True(t, dev.BYPASS_AUTH)
	assert.Equal(t, int64(10<<20), dev.MAX_UPLOAD_BYTES)
}

func TestParseAppliesDefaults(t *testing.T) {
	c, err := ParseServerAppSetting(writeSetting(t, "BYPASS_AUTH: true\n"))
	require.Nil(t, err)
	assert.Equal(t, 8080, c.PORT)
	assert.Equal(t, StoreBackendPostgres, c.STORE_BACKEND)
	assert.Equal(t, MediaBackendLocal, c.MEDIA_BACKEND)
}

func TestParseRejectsInvalidSetting(t *testing.T) {
	_, err := ParseServerAppSetting(writeSetting(t, "STORE_BACKEND: mysql\n"))
	assert.NotNil(t, err)

	_, err = ParseServerAppSetting(writeSetting(t, "MEDIA_BACKEND: s3\n"))
	assert.NotNil(t, err)

	_, err = ParseServerAppSetting(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)
}
