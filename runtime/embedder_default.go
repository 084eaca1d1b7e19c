//go:build !onnx

package runtime

import (
	"errors"

	"github.com/recallhq/recall-go-sdk/memory"
)

// defaultEmbedder requires an explicit embedder when the ONNX backend is
// not compiled in.
func defaultEmbedder(config *Config) (memory.Embedder, error) {
	return nil, errors.New("no embedder available: build with -tags onnx or pass WithEmbedder")
}
