package mirror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/redactor-upload/config"
)

func testConfig(provider string) config.MirrorConfig {
	return config.MirrorConfig{
		Provider:  provider,
		Region:    "cn-hangzhou",
		Bucket:    "editor-media",
		AccessKey: "ak",
		SecretKey: "sk",
	}
}

func TestNewDisabled(t *testing.T) {
	for _, p := range []string{"", "none", "NONE"} {
		m, err := New(testConfig(p))
		require.NoError(t, err)
		assert.Nil(t, m, p)
	}
}

func TestNewUnsupported(t *testing.T) {
	_, err := New(testConfig("s3"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedProvider))
}

func TestNewProviders(t *testing.T) {
	m, err := New(testConfig(ProviderAliyun))
	require.NoError(t, err)
	assert.Equal(t, ProviderAliyun, m.Name())

	m, err = New(testConfig(ProviderTencent))
	require.NoError(t, err)
	assert.Equal(t, ProviderTencent, m.Name())

	cfg := testConfig(ProviderQiniu)
	cfg.Region = ""
	m, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderQiniu, m.Name())
}

func TestNewQiniuUnknownRegion(t *testing.T) {
	cfg := testConfig(ProviderQiniu)
	cfg.Region = "mars-1"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "wp-content/uploads/2026/10/photo.jpg", ObjectKey("wp-content/uploads", "2026/10/photo.jpg"))
	assert.Equal(t, "wp-content/uploads/2026/10/photo.jpg", ObjectKey("/wp-content/uploads/", "/2026/10/photo.jpg"))
	assert.Equal(t, "2026/10/photo.jpg", ObjectKey("", "2026/10/photo.jpg"))
}
