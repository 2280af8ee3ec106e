package server_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/heraldhq/herald/notify"
	"github.com/heraldhq/herald/server"
	"github.com/heraldhq/herald/services/diagnostic"
	"github.com/heraldhq/herald/services/lock"
	"github.com/heraldhq/herald/services/notification"
	"github.com/heraldhq/herald/services/storage"
	"github.com/influxdata/influxdb/toml"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServer(t *testing.T, mod func(c *server.Config)) *server.Server {
	t.Helper()
	dir := t.TempDir()
	c := server.NewConfig()
	c.Storage.Path = filepath.Join(dir, "notifications.cfg")
	c.Storage.BoltDBPath = filepath.Join(dir, "herald.db")
	c.Lock.Path = filepath.Join(dir, "herald.lock")
	if mod != nil {
		mod(c)
	}
	s, err := server.New(c, diagnostic.NewServiceWithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.NoError(t, s.Open())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestServer(t *testing.T) {
	backends := map[string]func(c *server.Config){
		"file": nil,
		"bolt": func(c *server.Config) {
			c.Storage.Backend = storage.BoltBackend
			c.Lock.Backend = lock.FileBackend
		},
	}
	for name, mod := range backends {
		t.Run(name, func(t *testing.T) {
			s := newServer(t, mod)
			ctx := context.Background()
			svc := s.NotificationService

			require.NoError(t, svc.AddEndpoint(ctx, notification.GotifyEndpoint{
				Name:   "gotify-ops",
				Server: "https://gotify.example.com",
				Token:  "t",
			}))
			require.NoError(t, svc.AddMatcher(ctx, notification.MatcherConfig{
				Name:          "errors",
				MatchSeverity: []string{"error"},
				Target:        []string{"gotify-ops"},
			}))

			targets, err := svc.Targets(ctx, notify.Event{Severity: notify.Error, Timestamp: time.Now()})
			require.NoError(t, err)
			assert.Equal(t, []string{"mail-to-root", "gotify-ops"}, targets)

			mfs, err := s.Registry.Gather()
			require.NoError(t, err)
			assert.NotEmpty(t, mfs)
		})
	}
}

func TestServer_InvalidConfig(t *testing.T) {
	c := server.NewConfig()
	c.Lock.Backend = "zookeeper"
	_, err := server.New(c, diagnostic.NewServiceWithLogger(zap.NewNop()))
	assert.Error(t, err)
}

func TestConfig_DefaultLockIsShared(t *testing.T) {
	c := server.NewConfig()
	c.Storage.Path = filepath.Join(t.TempDir(), "notifications.cfg")
	c.Lock.Timeout = toml.Duration(50 * time.Millisecond)
	require.NoError(t, c.Validate())

	lc := c.LockConfig()
	assert.Equal(t, lock.FileBackend, lc.Backend)
	assert.Equal(t, c.Storage.Path+".lock", lc.Path)

	// Each locker stands in for a separate heraldctl process.
	diag := diagnostic.NewServiceWithLogger(zap.NewNop()).NewLockHandler()
	first, err := lock.New(lc, diag)
	require.NoError(t, err)
	second, err := lock.New(c.LockConfig(), diag)
	require.NoError(t, err)

	lease, err := first.Acquire(context.Background())
	require.NoError(t, err)
	_, err = second.Acquire(context.Background())
	assert.True(t, errors.Is(err, lock.ErrTimeout), "got %v", err)

	require.NoError(t, lease.Release())
	lease, err = second.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, lease.Release())
}

func TestConfig_DefaultLockKeepsConcurrentWrites(t *testing.T) {
	c := server.NewConfig()
	c.Storage.Path = filepath.Join(t.TempDir(), "notifications.cfg")

	const writers = 4
	stores := make([]*notification.Store, writers)
	for i := range stores {
		d := diagnostic.NewServiceWithLogger(zap.NewNop())
		l, err := lock.New(c.LockConfig(), d.NewLockHandler())
		require.NoError(t, err)
		stores[i] = notification.NewStore(notification.NewFileBackend(c.Storage.Path), l, d.NewNotificationHandler())
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i, s := range stores {
		wg.Add(1)
		go func(i int, s *notification.Store) {
			defer wg.Done()
			errs[i] = s.AddEndpoint(ctx, notification.SendmailEndpoint{
				Name:   fmt.Sprintf("ep%d", i),
				Mailto: []string{"ops@example.com"},
			})
		}(i, s)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	snapshot, _, err := stores[0].Read(ctx)
	require.NoError(t, err)
	for i := 0; i < writers; i++ {
		_, err := snapshot.Endpoint(fmt.Sprintf("ep%d", i))
		assert.NoError(t, err)
	}
}
