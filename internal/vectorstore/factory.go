package vectorstore

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/recall/pkg/config"
)

// New creates a vector store from the vectorstore config section.
//
// Supported providers:
//   - "chromem": embedded, persists to local disk (default)
//   - "qdrant": external Qdrant server over gRPC
func New(cfg config.VectorStoreConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Provider {
	case "chromem", "":
		return NewChromemStore(cfg, logger)
	case "qdrant":
		return NewQdrantStore(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: vectorstore provider %q (supported: chromem, qdrant)",
			config.ErrUnsupportedProvider, cfg.Provider)
	}
}
