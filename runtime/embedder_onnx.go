//go:build onnx

package runtime

import (
	"github.com/recallhq/recall-go-sdk/memory"
	"github.com/recallhq/recall-go-sdk/memory/embedder/onnx"
)

// defaultEmbedder loads the local ONNX model named in config.
func defaultEmbedder(config *Config) (memory.Embedder, error) {
	return onnx.New(onnx.Config{
		ModelPath:     config.ModelPath,
		TokenizerPath: config.TokenizerPath,
	})
}
