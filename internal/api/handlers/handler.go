package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/leozw/domain-inspector/internal/core"
)

// Inspector is the lookup service behind the API.
type Inspector interface {
	Lookup(ctx context.Context, input string, fresh bool) (*core.DomainReport, bool, error)
	History(ctx context.Context, domain string, limit int) ([]*core.DomainReport, error)
	HistoryEnabled() bool
}

type Handler struct {
	inspector Inspector
	logger    *zap.Logger
}

func NewHandler(inspector Inspector, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		inspector: inspector,
		logger:    logger,
	}
}
