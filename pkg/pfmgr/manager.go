// The preflight manager bundles the logger and configuration shared by every
// command. Library users embed it the same way the CLI does; see the package
// example.
package pfmgr

import (
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/modelstream/preflight/pkg/azureblob"
	"github.com/modelstream/preflight/pkg/preflight"
)

type Manager struct {
	Logger preflight.Logger
	Cfg    *viper.Viper
}

func NewManager(userCfg map[string]interface{}) (*Manager, error) {
	var err error
	mgr := &Manager{}

	if cfgPathRaw, ok := userCfg["config-file"]; ok {
		if cfgPath, ok := cfgPathRaw.(string); ok {
			err = mgr.initConfig(&cfgPath)
		} else {
			return nil, errors.New("option 'config-file' must be of type string")
		}
	} else {
		err = mgr.initConfig(nil)
	}
	if err != nil {
		return nil, err
	}

	if loggerRaw, ok := userCfg["logger"]; ok {
		if logger, ok := loggerRaw.(preflight.Logger); ok {
			mgr.Logger = logger
		} else {
			return nil, errors.New("option 'logger' must satisfy preflight.Logger")
		}
	} else {
		mgr.Logger = logrus.New()
	}

	return mgr, nil
}

// Destroy releases manager resources. Nothing needs teardown today, but
// callers should still pair every NewManager with a Destroy.
func (self *Manager) Destroy() {}

func (self *Manager) initConfig(cfgPath *string) error {
	// Setup defaults and globals here. These can be overwritten in the config,
	// but aren't included by default.

	// This is a private viper context just for preflight (so as not to
	// conflict with the importer's usage).
	self.Cfg = viper.New()

	// Order of precedence: ENV, preflight.yaml, "us-east-1"
	self.Cfg.SetDefault("s3.region", "us-east-1")
	self.Cfg.BindEnv("s3.region", "AWS_REGION", "AWS_DEFAULT_REGION")

	// The AZURE_STORAGE_* variables are deliberately not bound here: the
	// credential resolver owns that environment fill so its precedence rules
	// stay in one place.
	self.Cfg.SetDefault("azure.max-retries", azureblob.DefaultMaxRetries)
	self.Cfg.SetDefault("azure.retry-delay", azureblob.DefaultRetryDelay)
	self.Cfg.SetDefault("azure.request-timeout", azureblob.DefaultRequestTimeout)

	self.Cfg.SetDefault("stream.concurrency", azureblob.DefaultConcurrency)
	self.Cfg.SetDefault("stream.device", "cpu")

	if cfgPath != nil {
		// Use config file from the flag.
		self.Cfg.SetConfigFile(*cfgPath)
	} else {
		// default search path for config is ./configs/preflight.* then
		// ~/.preflight/preflight.*
		self.Cfg.AddConfigPath("./configs")
		if home, err := homedir.Dir(); err == nil {
			self.Cfg.AddConfigPath(filepath.Join(home, ".preflight"))
		}
		self.Cfg.SetConfigName("preflight")
	}

	if err := self.Cfg.ReadInConfig(); err != nil {
		// The diagnostics must be runnable from nothing but environment
		// variables, so a missing config file is only fatal when the caller
		// named one explicitly.
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound && cfgPath == nil {
			return nil
		}
		return errors.Wrap(err, "Failed to load config")
	}
	return nil
}
