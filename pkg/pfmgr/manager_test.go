package pfmgr

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	// Keep the environment out of the region default
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")

	mgr, err := NewManager(map[string]interface{}{})
	require.NoError(t, err)
	defer mgr.Destroy()

	assert.Equal(t, "us-east-1", mgr.Cfg.GetString("s3.region"))
	assert.Equal(t, 3, mgr.Cfg.GetInt("azure.max-retries"))
	assert.Equal(t, time.Second, mgr.Cfg.GetDuration("azure.retry-delay"))
	assert.Equal(t, 300*time.Second, mgr.Cfg.GetDuration("azure.request-timeout"))
	assert.Equal(t, 8, mgr.Cfg.GetInt("stream.concurrency"))
	assert.Equal(t, "cpu", mgr.Cfg.GetString("stream.device"))
	assert.NotNil(t, mgr.Logger)
}

func TestNewManagerRegionFromEnvironment(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-central-1")

	mgr, err := NewManager(map[string]interface{}{})
	require.NoError(t, err)
	defer mgr.Destroy()

	assert.Equal(t, "eu-central-1", mgr.Cfg.GetString("s3.region"))
}

func TestNewManagerCustomLogger(t *testing.T) {
	logger := logrus.New()
	mgr, err := NewManager(map[string]interface{}{"logger": logger})
	require.NoError(t, err)
	defer mgr.Destroy()

	assert.Equal(t, logger, mgr.Logger)
}

func TestNewManagerBadOptions(t *testing.T) {
	_, err := NewManager(map[string]interface{}{"logger": "not a logger"})
	require.Error(t, err)

	_, err = NewManager(map[string]interface{}{"config-file": 42})
	require.Error(t, err)
}

func TestNewManagerMissingExplicitConfigFile(t *testing.T) {
	_, err := NewManager(map[string]interface{}{"config-file": "./does-not-exist.yaml"})
	require.Error(t, err)
}
