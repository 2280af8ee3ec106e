// Package diagnostic builds the zap logger and the Diagnostic implementations of every service.
package diagnostic

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Service struct {
	mu     sync.Mutex
	c      Config
	stdout io.Writer
	stderr io.Writer
	closer io.Closer
	level  zap.AtomicLevel

	logger *zap.Logger
}

func NewService(c Config, stdout, stderr io.Writer) *Service {
	return &Service{
		c:      c,
		stdout: stdout,
		stderr: stderr,
		level:  zap.NewAtomicLevel(),
		logger: zap.NewNop(),
	}
}

// NewServiceWithLogger returns an opened service logging to l.
func NewServiceWithLogger(l *zap.Logger) *Service {
	return &Service{
		level:  zap.NewAtomicLevel(),
		logger: l,
	}
}

func (s *Service) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var output io.Writer
	switch s.c.File {
	case "STDERR":
		output = s.stderr
	case "STDOUT":
		output = s.stdout
	default:
		dir := filepath.Dir(s.c.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "mkdir dirs %q", dir)
		}
		f, err := os.OpenFile(s.c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			return errors.Wrapf(err, "open log file %q", s.c.File)
		}
		output = f
		s.closer = f
	}

	if err := s.level.UnmarshalText([]byte(s.c.Level)); err != nil {
		return errors.Errorf("unknown logging level %q", s.c.Level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	switch s.c.Encoding {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	case "console":
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return errors.Errorf("unknown log encoding %q", s.c.Encoding)
	}
	s.logger = zap.New(zapcore.NewCore(encoder, zapcore.AddSync(output), s.level))
	return nil
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.logger.Sync()
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}

// SetLevel changes the level of all loggers created by the service.
func (s *Service) SetLevel(level string) error {
	if err := s.level.UnmarshalText([]byte(level)); err != nil {
		return errors.Errorf("unknown logging level %q", level)
	}
	return nil
}

func (s *Service) Logger() *zap.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger
}

func (s *Service) NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{l: s.Logger().With(zap.String("service", "notification"))}
}

func (s *Service) NewLockHandler() *LockHandler {
	return &LockHandler{l: s.Logger().With(zap.String("service", "lock"))}
}

func (s *Service) NewStorageHandler() *StorageHandler {
	return &StorageHandler{l: s.Logger().With(zap.String("service", "storage"))}
}

func (s *Service) NewServerHandler() *ServerHandler {
	return &ServerHandler{l: s.Logger().With(zap.String("service", "server"))}
}

func (s *Service) NewCmdHandler() *CmdHandler {
	return &CmdHandler{l: s.Logger().With(zap.String("service", "cmd"))}
}
