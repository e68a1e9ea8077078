package azureblob

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/modelstream/preflight/pkg/preflight"
)

// How many blobs to show when the target blob is missing.
const listingLimit = 20

// Checker runs the Azure Blob access diagnostics: credential resolution,
// container existence, and blob metadata, reporting enough detail for the
// operator to fix whatever is misconfigured.
type Checker struct {
	log       preflight.Logger
	svc       BlobService
	strategy  Strategy
	account   string
	container string
	blob      string
}

// Report collects the outcome of one diagnostic run. SDK errors encountered
// along the way abort the run and are returned from Run unchanged.
type Report struct {
	Strategy       Strategy
	Containers     []string
	ContainerFound bool
	Object         *BlobMeta
	ObjectFound    bool
	// Listing holds up to 20 blobs from the container when the target blob
	// was not found.
	Listing []BlobMeta
}

// NewChecker builds a checker from the azure.* configuration keys. The
// credential bundle is assembled from configuration, resolved against the
// environment, and turned into a service client; a configuration error from
// the resolver is returned as-is.
func NewChecker(logger preflight.Logger, config *viper.Viper) (*Checker, error) {
	creds := &Credentials{
		AccountName: config.GetString("azure.account"),
		Endpoint:    config.GetString("azure.endpoint"),
	}

	strategy, err := ResolveStrategy(creds, nil)
	if err != nil {
		return nil, err
	}

	client, err := NewServiceClient(creds, nil, OptionsFromConfig(config))
	if err != nil {
		return nil, err
	}

	return &Checker{
		log:       logger,
		svc:       NewBlobService(client),
		strategy:  strategy,
		account:   creds.AccountName,
		container: config.GetString("azure.container"),
		blob:      config.GetString("azure.blob"),
	}, nil
}

// NewCheckerWithService builds a checker over an existing BlobService. Used
// by tests and by callers that already hold a client.
func NewCheckerWithService(logger preflight.Logger, config *viper.Viper, strategy Strategy, svc BlobService) *Checker {
	return &Checker{
		log:       logger,
		svc:       svc,
		strategy:  strategy,
		container: config.GetString("azure.container"),
		blob:      config.GetString("azure.blob"),
	}
}

// Run executes the diagnostics in order: container listing, then blob
// metadata, listing the container's contents when the blob is missing.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	if c.container == "" {
		return nil, errors.New("no container configured, set azure.container or pass --container")
	}

	report := &Report{Strategy: c.strategy}
	c.log.Infof("Authentication strategy: %v", c.strategy)
	if c.account != "" {
		c.log.Infof("Storage account: %s", c.account)
	}

	containers, err := c.svc.ListContainers(ctx)
	if err != nil {
		return report, errors.Wrap(err, "listing containers")
	}
	report.Containers = containers
	c.log.Infof("Found %d containers", len(containers))

	for _, name := range containers {
		if name == c.container {
			report.ContainerFound = true
			break
		}
	}
	if report.ContainerFound {
		c.log.Infof("Container %q exists", c.container)
	} else {
		c.log.Warnf("Container %q NOT found, available: %v", c.container, containers)
	}

	if c.blob == "" {
		return report, nil
	}

	meta, err := c.svc.BlobProperties(ctx, c.container, c.blob)
	switch {
	case err == nil:
		report.Object = meta
		report.ObjectFound = true
		c.log.Infof("Blob exists: size=%s last-modified=%v content-type=%s",
			preflight.FormatMB(meta.Size), meta.LastModified, meta.ContentType)
	case errors.Is(err, ErrNotFound):
		c.log.Warnf("Blob %q NOT found in container %q", c.blob, c.container)
		listing, listErr := c.svc.ListBlobs(ctx, c.container, listingLimit)
		if listErr != nil {
			c.log.Warnf("Could not list container: %v", listErr)
			return report, nil
		}
		report.Listing = listing
		for _, b := range listing {
			c.log.Infof("  - %s (%s)", b.Name, preflight.FormatMB(b.Size))
		}
	default:
		return report, errors.Wrap(err, "checking blob")
	}

	return report, nil
}
