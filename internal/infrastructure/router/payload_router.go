package router

import (
	"logsync-service/internal/domain/entity"
	"logsync-service/internal/usecase"
	"logsync-service/pkg/logger"
)

// PayloadRouter routes fetched record batches to the handler that
// understands their shape (event pages vs. legacy flight records)
type PayloadRouter struct {
	handlers []usecase.BatchHandler
	logger   logger.Logger
}

// NewPayloadRouter creates a new payload router
func NewPayloadRouter(logger logger.Logger) *PayloadRouter {
	return &PayloadRouter{
		handlers: make([]usecase.BatchHandler, 0),
		logger:   logger,
	}
}

// Register registers a handler for a payload shape
func (r *PayloadRouter) Register(handler usecase.BatchHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered batch handler", "handler", handler)
}

// GetHandler returns the appropriate handler for the given batch
func (r *PayloadRouter) GetHandler(batch []entity.RawRecord) usecase.BatchHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(batch) {
			return handler
		}
	}
	return nil
}
