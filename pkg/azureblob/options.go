package azureblob

import (
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/spf13/viper"
)

// Transfer and retry defaults for the blob client. These match the streamer's
// client configuration defaults.
const (
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = time.Second
	DefaultRequestTimeout = 300 * time.Second
	DefaultConcurrency    = 8
)

// Options carries the tunable client settings exposed through configuration.
// A nil *Options uses the defaults above.
type Options struct {
	MaxRetries     int32
	RetryDelay     time.Duration
	RequestTimeout time.Duration
	// Concurrency is not a client knob; it rides along so the streamer
	// handoff can size its transfer pool from the same configuration.
	Concurrency int
}

// OptionsFromConfig reads client options from the azure.* configuration keys,
// falling back to the defaults for anything unset.
func OptionsFromConfig(config *viper.Viper) *Options {
	opts := &Options{
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
		RequestTimeout: DefaultRequestTimeout,
		Concurrency:    DefaultConcurrency,
	}
	if config == nil {
		return opts
	}
	if config.IsSet("azure.max-retries") {
		opts.MaxRetries = int32(config.GetInt("azure.max-retries"))
	}
	if config.IsSet("azure.retry-delay") {
		opts.RetryDelay = config.GetDuration("azure.retry-delay")
	}
	if config.IsSet("azure.request-timeout") {
		opts.RequestTimeout = config.GetDuration("azure.request-timeout")
	}
	if config.IsSet("stream.concurrency") {
		opts.Concurrency = config.GetInt("stream.concurrency")
	}
	return opts
}

func (o *Options) clientOptions() *azblob.ClientOptions {
	if o == nil {
		o = &Options{
			MaxRetries:     DefaultMaxRetries,
			RetryDelay:     DefaultRetryDelay,
			RequestTimeout: DefaultRequestTimeout,
			Concurrency:    DefaultConcurrency,
		}
	}
	clientOpts := &azblob.ClientOptions{}
	clientOpts.Retry = policy.RetryOptions{
		MaxRetries: o.MaxRetries,
		RetryDelay: o.RetryDelay,
		TryTimeout: o.RequestTimeout,
	}
	return clientOpts
}
