package streamer

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStreamer struct{}

func (stubStreamer) StreamFile(ctx context.Context, uri string, cfg Config) (Iterator, error) {
	return stubIterator{}, nil
}

type stubIterator struct{}

func (stubIterator) Next() (*TensorInfo, error) { return nil, io.EOF }

func TestDefaultWithoutProvider(t *testing.T) {
	reset()

	_, err := Default()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tensor streamer is registered")
	assert.Contains(t, err.Error(), "streamer.Register")
}

func TestRegisterAndDefault(t *testing.T) {
	reset()
	Register("stub", stubStreamer{})

	s, err := Default()
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestDefaultAmbiguous(t *testing.T) {
	reset()
	Register("a", stubStreamer{})
	Register("b", stubStreamer{})

	_, err := Default()
	require.Error(t, err)

	s, err := Get("a")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	reset()
	Register("stub", stubStreamer{})
	assert.Panics(t, func() { Register("stub", stubStreamer{}) })
	assert.Panics(t, func() { Register("nil", nil) })
}
