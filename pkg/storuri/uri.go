// Object storage URIs as consumed by the tensor-streaming library:
// s3://bucket/key and azure://container/blob. For the Azure scheme the
// storage account is supplied out-of-band through credentials, never in
// the URI itself.
package storuri

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	SchemeS3    = "s3"
	SchemeAzure = "azure"
)

// URI is a parsed object storage location. Bucket holds the S3 bucket or
// Azure container name, Key the object key or blob path.
type URI struct {
	Scheme string
	Bucket string
	Key    string
}

// S3 formats an s3:// URI for the given bucket and object key.
func S3(bucket, key string) string {
	return SchemeS3 + "://" + bucket + "/" + key
}

// Azure formats an azure:// URI for the given container and blob path.
func Azure(container, blob string) string {
	return SchemeAzure + "://" + container + "/" + blob
}

// Parse validates and splits a storage URI.
func Parse(raw string) (*URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parsing storage URI")
	}

	switch u.Scheme {
	case SchemeS3, SchemeAzure:
	default:
		return nil, errors.Errorf("unsupported storage scheme %q in %q (expected %s:// or %s://)",
			u.Scheme, raw, SchemeS3, SchemeAzure)
	}

	if u.Host == "" {
		return nil, errors.Errorf("missing bucket or container in %q", raw)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return nil, errors.Errorf("missing object path in %q", raw)
	}

	return &URI{Scheme: u.Scheme, Bucket: u.Host, Key: key}, nil
}

func (u *URI) String() string {
	return u.Scheme + "://" + u.Bucket + "/" + u.Key
}
