package azureblob

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/pkg/errors"
)

// ErrNotFound marks a missing container or blob so callers can distinguish
// "doesn't exist" from transport and authentication failures, which are
// passed through as-is from the SDK.
var ErrNotFound = errors.New("not found")

// BlobMeta describes a single blob as reported by the service.
type BlobMeta struct {
	Name         string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// BlobService is the narrow slice of the blob API the diagnostics need.
// The azblob-backed implementation below is the only production one; tests
// substitute fakes.
type BlobService interface {
	// ListContainers returns the names of all containers in the account.
	ListContainers(ctx context.Context) ([]string, error)

	// BlobProperties returns metadata for one blob, or ErrNotFound.
	BlobProperties(ctx context.Context, container, blob string) (*BlobMeta, error)

	// ListBlobs returns up to max blobs from the container.
	ListBlobs(ctx context.Context, container string, max int32) ([]BlobMeta, error)
}

type blobService struct {
	client *azblob.Client
}

// NewBlobService adapts an azblob client to the BlobService interface.
func NewBlobService(client *azblob.Client) BlobService {
	return &blobService{client: client}
}

func (s *blobService) ListContainers(ctx context.Context) ([]string, error) {
	var names []string
	pager := s.client.NewListContainersPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.ContainerItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

func (s *blobService) BlobProperties(ctx context.Context, container, blob string) (*BlobMeta, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(container).NewBlobClient(blob)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	meta := &BlobMeta{Name: blob}
	if props.ContentLength != nil {
		meta.Size = *props.ContentLength
	}
	if props.LastModified != nil {
		meta.LastModified = *props.LastModified
	}
	if props.ContentType != nil {
		meta.ContentType = *props.ContentType
	}
	return meta, nil
}

func (s *blobService) ListBlobs(ctx context.Context, container string, max int32) ([]BlobMeta, error) {
	var blobs []BlobMeta
	pager := s.client.NewListBlobsFlatPager(container, &azblob.ListBlobsFlatOptions{
		MaxResults: &max,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if bloberror.HasCode(err, bloberror.ContainerNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			meta := BlobMeta{Name: *item.Name}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				meta.Size = *item.Properties.ContentLength
			}
			blobs = append(blobs, meta)
			if int32(len(blobs)) >= max {
				return blobs, nil
			}
		}
	}
	return blobs, nil
}
