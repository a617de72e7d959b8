package app

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/accounts/internal/accounts/notify"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := LoadConfig()
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.Port = freePort(t)
	cfg.DatabaseDSN = "file:" + filepath.Join(dir, "accounts.db")
	cfg.PepperFile = filepath.Join(dir, "pepper")
	cfg.SigningKeyFile = filepath.Join(dir, "signing.pem")
	cfg.LogLevel = "error"
	cfg.ShutdownGracePeriod = 2 * time.Second
	return cfg
}

// start runs the application until the test ends.
func start(t *testing.T, cfg Config) *accountsdk.Client {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	application, err := New(ctx, cfg)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("application did not shut down")
		}
	})

	client := accountsdk.NewClient(fmt.Sprintf("http://127.0.0.1:%d", cfg.Port))
	require.Eventually(t, func() bool {
		_, err := client.GetLiveness(context.Background())
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	return client
}

func TestApplication_ServesAndShutsDown(t *testing.T) {
	cfg := testConfig(t)
	client := start(t, cfg)
	ctx := context.Background()

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, BuildVersion, ready.Version)

	_, err = client.Register(ctx, accountsdk.RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Admin",
		Email:           "ada@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
		AcceptTerms:     true,
	})
	require.NoError(t, err)

	// Signing key and pepper are persisted for the next start
	require.FileExists(t, cfg.SigningKeyFile)
	require.FileExists(t, cfg.PepperFile)
}

func TestApplication_QueueTransport(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.MailTransport = MailQueue
	cfg.RedisAddr = mr.Addr()
	cfg.MailWorker = false

	client := start(t, cfg)
	ctx := context.Background()

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks["queue"])

	_, err = client.Register(ctx, accountsdk.RegisterRequest{
		FirstName:       "Quinn",
		LastName:        "Queue",
		Email:           "quinn@example.com",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
		AcceptTerms:     true,
	})
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	pending := "asynq:{" + notify.QueueDefault + "}:pending"
	require.Eventually(t, func() bool {
		n, err := rdb.LLen(ctx, pending).Result()
		return err == nil && n == 1
	}, 5*time.Second, 20*time.Millisecond)
}
