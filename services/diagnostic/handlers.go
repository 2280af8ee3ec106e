package diagnostic

import (
	"time"

	"github.com/heraldhq/herald/services/notification"
	"go.uber.org/zap"
)

// Notification Service Handler

type NotificationHandler struct {
	l *zap.Logger
}

func (h *NotificationHandler) ConfigWritten(op string, digest notification.Digest) {
	h.l.Info("configuration written", zap.String("op", op), zap.String("digest", string(digest)))
}

func (h *NotificationHandler) UnknownTarget(name string) {
	h.l.Warn("skipping unknown notification target", zap.String("target", name))
}

func (h *NotificationHandler) RuleMatched(rule string, targets []string) {
	h.l.Debug("matcher fired", zap.String("matcher", rule), zap.Strings("targets", targets))
}

func (h *NotificationHandler) Error(msg string, err error) {
	h.l.Error(msg, zap.Error(err))
}

// Lock Handler

type LockHandler struct {
	l *zap.Logger
}

func (h *LockHandler) Acquired(backend string, waited time.Duration) {
	h.l.Debug("acquired configuration lock", zap.String("backend", backend), zap.Duration("waited", waited))
}

func (h *LockHandler) Released(backend string, held time.Duration) {
	h.l.Debug("released configuration lock", zap.String("backend", backend), zap.Duration("held", held))
}

func (h *LockHandler) Error(msg string, err error) {
	h.l.Error(msg, zap.Error(err))
}

// Storage Handler

type StorageHandler struct {
	l *zap.Logger
}

func (h *StorageHandler) Opened(path string) {
	h.l.Info("opened bolt database", zap.String("path", path))
}

func (h *StorageHandler) Error(msg string, err error) {
	h.l.Error(msg, zap.Error(err))
}

// Server Handler

type ServerHandler struct {
	l *zap.Logger
}

func (h *ServerHandler) OpeningService(name string) {
	h.l.Debug("opening service", zap.String("name", name))
}

func (h *ServerHandler) ClosingService(name string) {
	h.l.Debug("closing service", zap.String("name", name))
}

func (h *ServerHandler) Error(msg string, err error) {
	h.l.Error(msg, zap.Error(err))
}

// Cmd Handler

type CmdHandler struct {
	l *zap.Logger
}

func (h *CmdHandler) Command(name string, args []string) {
	h.l.Debug("running command", zap.String("command", name), zap.Strings("args", args))
}

func (h *CmdHandler) Error(msg string, err error) {
	h.l.Error(msg, zap.Error(err))
}
