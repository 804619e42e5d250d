// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/z5labs/blockbuilder/internal/remoteuser"
	"github.com/z5labs/blockbuilder/pkg/health"
	"github.com/z5labs/blockbuilder/pkg/noop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func newAPI(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(remoteuser.NewServer().Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestCreateCmd(t *testing.T) {
	t.Run("will print the created user and its activity", func(t *testing.T) {
		stdout, _, err := execute(t, "create", "--endpoint", newAPI(t), "--username", "alice", "--password", "secret")
		require.Nil(t, err)

		if !assert.Contains(t, stdout, "created user alice") {
			return
		}
		if !assert.Contains(t, stdout, "1 events in the last 1h0m0s") {
			return
		}
		if !assert.NotContains(t, stdout, "stats:") {
			return
		}
	})

	t.Run("will print statistics", func(t *testing.T) {
		t.Run("if the stats flag is set", func(t *testing.T) {
			stdout, _, err := execute(t, "create", "--endpoint", newAPI(t), "--username", "alice", "--password", "secret", "--stats")
			require.Nil(t, err)

			if !assert.Contains(t, stdout, "stats: username=alice events=1") {
				return
			}
		})
	})

	t.Run("will mask the password in logs", func(t *testing.T) {
		_, stderr, err := execute(t, "create", "--endpoint", newAPI(t), "--username", "alice", "--password", "hunter2")
		require.Nil(t, err)

		if !assert.Contains(t, stderr, "creating remote user") {
			return
		}
		if !assert.NotContains(t, stderr, "hunter2") {
			return
		}
	})

	t.Run("will read the activity window", func(t *testing.T) {
		t.Run("if it is set in a config file", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "settings.yaml")
			err := os.WriteFile(path, []byte("activity:\n  window: 15m\n"), 0o600)
			require.Nil(t, err)

			stdout, _, err := execute(t, "create", "--endpoint", newAPI(t), "--username", "alice", "--password", "secret", "--config", path)
			require.Nil(t, err)

			if !assert.Contains(t, stdout, "in the last 15m0s") {
				return
			}
		})

		t.Run("if it is set in the environment", func(t *testing.T) {
			t.Setenv(EnvPrefix+"ACTIVITY__WINDOW", "30m")

			stdout, _, err := execute(t, "create", "--endpoint", newAPI(t), "--username", "alice", "--password", "secret")
			require.Nil(t, err)

			if !assert.Contains(t, stdout, "in the last 30m0s") {
				return
			}
		})
	})

	t.Run("will write spans to stderr", func(t *testing.T) {
		t.Run("if the trace flag is set", func(t *testing.T) {
			_, stderr, err := execute(t, "create", "--endpoint", newAPI(t), "--username", "alice", "--password", "secret", "--trace")
			require.Nil(t, err)

			if !assert.Contains(t, stderr, `"Name":"blockbuilder.Build"`) {
				return
			}
		})
	})

	t.Run("will indent spans", func(t *testing.T) {
		t.Run("if the pretty flag is set with the trace flag", func(t *testing.T) {
			_, stderr, err := execute(t, "create", "--endpoint", newAPI(t), "--username", "alice", "--password", "secret", "--trace", "--pretty")
			require.Nil(t, err)

			if !assert.Contains(t, stderr, "\n\t\"Name\": \"blockbuilder.Build\"") {
				return
			}
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the api does not respond within the timeout", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(5 * time.Second):
				}
			}))
			t.Cleanup(srv.Close)

			start := time.Now()
			_, _, err := execute(t, "create", "--endpoint", srv.URL, "--username", "alice", "--password", "secret", "--timeout", "20ms")
			if !assert.Error(t, err) {
				return
			}
			if !assert.Less(t, time.Since(start), 5*time.Second) {
				return
			}
		})

		t.Run("if the username is taken", func(t *testing.T) {
			endpoint := newAPI(t)

			_, _, err := execute(t, "create", "--endpoint", endpoint, "--username", "alice", "--password", "secret")
			require.Nil(t, err)

			_, _, err = execute(t, "create", "--endpoint", endpoint, "--username", "alice", "--password", "secret")

			var serr remoteuser.StatusError
			if !assert.ErrorAs(t, err, &serr) {
				return
			}
			if !assert.Equal(t, http.StatusConflict, serr.Code) {
				return
			}
		})

		t.Run("if the username flag is missing", func(t *testing.T) {
			_, _, err := execute(t, "create", "--endpoint", newAPI(t), "--password", "secret")
			if !assert.Error(t, err) {
				return
			}
		})
	})
}

func TestServe(t *testing.T) {
	t.Run("will return nil", func(t *testing.T) {
		t.Run("if the context is cancelled", func(t *testing.T) {
			ls, err := net.Listen("tcp", "127.0.0.1:0")
			require.Nil(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			ready := new(health.Binary)
			err = serve(ctx, ls, noop.Logger(), remoteuser.NewServer().Handler(), ready)
			if !assert.Nil(t, err) {
				return
			}
			if !assert.False(t, ready.Healthy(context.Background())) {
				return
			}
		})
	})

	t.Run("will report ready and serve the users api", func(t *testing.T) {
		ls, err := net.Listen("tcp", "127.0.0.1:0")
		require.Nil(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ready := new(health.Binary)
		errCh := make(chan error, 1)
		go func() {
			errCh <- serve(ctx, ls, noop.Logger(), remoteuser.NewServer().Handler(), ready)
		}()

		base := "http://" + ls.Addr().String()
		require.Eventually(t, func() bool {
			resp, err := http.Get(base + "/health/readiness")
			if err != nil {
				return false
			}
			resp.Body.Close()
			return resp.StatusCode == http.StatusOK
		}, 5*time.Second, 10*time.Millisecond)

		stdout, _, err := execute(t, "create", "--endpoint", base, "--username", "alice", "--password", "secret")
		require.Nil(t, err)
		if !assert.Contains(t, stdout, "created user alice") {
			return
		}

		cancel()
		if !assert.Nil(t, <-errCh) {
			return
		}
	})
}
