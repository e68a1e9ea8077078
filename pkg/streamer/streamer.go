// Contract with the external tensor-streaming library. Preflight assembles
// credentials and a storage URI; the streamer owns locating the object,
// reading its byte ranges, parsing the tensor container format, and placing
// tensors on the target device. None of that happens here.
package streamer

import (
	"context"

	"github.com/modelstream/preflight/pkg/azureblob"
)

// TensorInfo is the per-tensor metadata a streamer reports as it loads.
type TensorInfo struct {
	Name  string
	Shape []int64
	DType string
	Bytes int64
}

// Iterator yields tensors in stream order. Next returns io.EOF when the
// stream is exhausted.
type Iterator interface {
	Next() (*TensorInfo, error)
}

// Config is the handoff preflight assembles for a streaming session. The
// account identity for Azure URIs travels here, not in the URI.
type Config struct {
	// AzureCredentials is the resolved bundle for azure:// URIs; nil for S3,
	// where the streamer uses the ambient AWS credential chain.
	AzureCredentials *azureblob.Credentials

	// Device is the placement target, e.g. "cpu" or "cuda:0".
	Device string

	// Concurrency bounds the streamer's parallel range reads.
	Concurrency int
}

// Streamer is implemented by the external streaming library.
type Streamer interface {
	StreamFile(ctx context.Context, uri string, cfg Config) (Iterator, error)
}
