// Package clipboard provides access to the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a Clipboard service implementation.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

var _ Copier = (*Service)(nil)

// TryCopy writes text with copier and reports whether it worked. Failures are logged and
// otherwise ignored: a missing clipboard never fails the caller.
func TryCopy(copier Copier, text string, logger *zap.Logger) bool {
	if copier == nil {
		return false
	}
	if err := copier.Copy(text); err != nil {
		logger.Warn("clipboard unavailable", zap.Error(err))
		return false
	}
	return true
}
