// S3 access diagnostics. Verifies credentials, bucket visibility, bucket
// region, and object presence before a streaming session is attempted.
package s3check

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/modelstream/preflight/pkg/preflight"
)

// Environment variables consumed by the credential check.
const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
)

// S3 reports no LocationConstraint for buckets in its original region.
const defaultRegion = "us-east-1"

// How many keys to show when the target object is missing.
const listingLimit = 20

// ObjectMeta describes a single object as reported by S3.
type ObjectMeta struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// Report collects the outcome of one diagnostic run. Individual probes that
// fail with an SDK error are logged and leave their fields zero; only an
// unexpected failure on the object check aborts the run.
type Report struct {
	AccessKeyID    string // masked
	Region         string
	Buckets        []string
	BucketFound    bool
	BucketRegion   string
	RegionMismatch bool
	Object         *ObjectMeta
	ObjectFound    bool
	// Listing holds up to 20 keys from the bucket when the target object
	// was not found.
	Listing []ObjectMeta
}

// Checker runs the S3 diagnostics against a bucket and object key taken from
// the s3.* configuration keys.
type Checker struct {
	log    preflight.Logger
	api    s3iface.S3API
	bucket string
	key    string
	region string
}

// NewChecker builds a checker with a real S3 client. The region comes from
// configuration (which pfmgr binds to AWS_REGION / AWS_DEFAULT_REGION).
func NewChecker(logger preflight.Logger, config *viper.Viper) (*Checker, error) {
	region := config.GetString("s3.region")
	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "creating AWS session")
	}
	return NewCheckerWithAPI(logger, config, s3.New(sess)), nil
}

// NewCheckerWithAPI builds a checker over an existing S3 API handle. Used by
// tests and by callers that already hold a session.
func NewCheckerWithAPI(logger preflight.Logger, config *viper.Viper, api s3iface.S3API) *Checker {
	return &Checker{
		log:    logger,
		api:    api,
		bucket: config.GetString("s3.bucket"),
		key:    config.GetString("s3.path"),
		region: config.GetString("s3.region"),
	}
}

// CheckCredentials verifies that the static AWS credentials are present in
// the environment and logs them masked. Returns a configuration error when
// either variable is missing. A nil lookup reads the real environment.
func (c *Checker) CheckCredentials(lookup preflight.LookupFunc) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	keyID, ok := lookup(EnvAccessKeyID)
	if !ok || keyID == "" {
		return "", errors.New("AWS credentials not found in environment, set " +
			EnvAccessKeyID + " and " + EnvSecretAccessKey)
	}
	secret, ok := lookup(EnvSecretAccessKey)
	if !ok || secret == "" {
		return "", errors.New("AWS credentials not found in environment, set " +
			EnvAccessKeyID + " and " + EnvSecretAccessKey)
	}

	masked := preflight.MaskKeyID(keyID)
	c.log.Infof("%s: %s", EnvAccessKeyID, masked)
	c.log.Infof("%s: %s", EnvSecretAccessKey, preflight.MaskSecret(secret))
	c.log.Infof("AWS_REGION: %s", c.region)
	return masked, nil
}

// Run executes the diagnostics in order: credentials, bucket listing, bucket
// region, then object metadata, listing the bucket's contents when the object
// is missing.
func (c *Checker) Run(ctx context.Context, lookup preflight.LookupFunc) (*Report, error) {
	if c.bucket == "" {
		return nil, errors.New("no bucket configured, set s3.bucket or pass --bucket")
	}

	report := &Report{Region: c.region}

	masked, err := c.CheckCredentials(lookup)
	if err != nil {
		return report, err
	}
	report.AccessKeyID = masked

	c.checkBuckets(ctx, report)
	c.checkRegion(ctx, report)
	if err := c.checkObject(ctx, report); err != nil {
		return report, err
	}
	return report, nil
}

func (c *Checker) checkBuckets(ctx context.Context, report *Report) {
	out, err := c.api.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	if err != nil {
		c.log.Warnf("Failed to list buckets: %v", err)
		return
	}

	for _, b := range out.Buckets {
		report.Buckets = append(report.Buckets, aws.StringValue(b.Name))
	}
	c.log.Infof("Found %d buckets", len(report.Buckets))

	for _, name := range report.Buckets {
		if name == c.bucket {
			report.BucketFound = true
			break
		}
	}
	if report.BucketFound {
		c.log.Infof("Bucket %q exists", c.bucket)
	} else {
		c.log.Warnf("Bucket %q NOT found, available: %v", c.bucket, report.Buckets)
	}
}

func (c *Checker) checkRegion(ctx context.Context, report *Report) {
	out, err := c.api.GetBucketLocationWithContext(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		c.log.Warnf("Failed to get bucket location: %v", err)
		return
	}

	report.BucketRegion = aws.StringValue(out.LocationConstraint)
	if report.BucketRegion == "" {
		report.BucketRegion = defaultRegion
	}
	c.log.Infof("Bucket region: %s", report.BucketRegion)

	if report.BucketRegion != c.region {
		report.RegionMismatch = true
		c.log.Warnf("Bucket is in %s but the session uses %s, set: export AWS_REGION=%s",
			report.BucketRegion, c.region, report.BucketRegion)
	}
}

func (c *Checker) checkObject(ctx context.Context, report *Report) error {
	if c.key == "" {
		return nil
	}

	out, err := c.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key),
	})
	if err == nil {
		report.Object = &ObjectMeta{
			Key:          c.key,
			Size:         aws.Int64Value(out.ContentLength),
			LastModified: aws.TimeValue(out.LastModified),
			ContentType:  aws.StringValue(out.ContentType),
		}
		report.ObjectFound = true
		c.log.Infof("Object exists: size=%s last-modified=%v content-type=%s",
			preflight.FormatMB(report.Object.Size), report.Object.LastModified, report.Object.ContentType)
		return nil
	}

	if !isNotFound(err) {
		// Authentication and transport errors are the SDK's to explain
		return err
	}

	c.log.Warnf("Object NOT found at s3://%s/%s", c.bucket, c.key)
	list, listErr := c.api.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		MaxKeys: aws.Int64(listingLimit),
	})
	if listErr != nil {
		c.log.Warnf("Could not list bucket: %v", listErr)
		return nil
	}
	for _, obj := range list.Contents {
		meta := ObjectMeta{
			Key:          aws.StringValue(obj.Key),
			Size:         aws.Int64Value(obj.Size),
			LastModified: aws.TimeValue(obj.LastModified),
		}
		report.Listing = append(report.Listing, meta)
		c.log.Infof("  - %s (%s)", meta.Key, preflight.FormatMB(meta.Size))
	}
	if len(report.Listing) == 0 {
		c.log.Info("Bucket is empty")
	}
	return nil
}

// Head fetches metadata for the configured object only, without the
// surrounding diagnostics. Used by the streaming smoke test to verify the
// target before handoff.
func (c *Checker) Head(ctx context.Context) (*ObjectMeta, error) {
	out, err := c.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Errorf("object not found at s3://%s/%s", c.bucket, c.key)
		}
		return nil, err
	}
	return &ObjectMeta{
		Key:          c.key,
		Size:         aws.Int64Value(out.ContentLength),
		LastModified: aws.TimeValue(out.LastModified),
		ContentType:  aws.StringValue(out.ContentType),
	}, nil
}

func isNotFound(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case "NotFound", s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket:
			return true
		}
	}
	if reqErr, ok := err.(awserr.RequestFailure); ok {
		return reqErr.StatusCode() == 404
	}
	return false
}
