// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/z5labs/blockbuilder"
	"github.com/z5labs/blockbuilder/config"
	"github.com/z5labs/blockbuilder/internal/remoteuser"
	"github.com/z5labs/blockbuilder/pkg/otelconfig"

	"github.com/spf13/cobra"
)

// EnvPrefix is stripped from environment variables before they are used as settings.
const EnvPrefix = "REMOTEUSER_"

const statsFlag = "stats"

type createFlags struct {
	endpoint   string
	username   string
	password   string
	configFile string
	timeout    time.Duration
	stats      bool
	trace      bool
	pretty     bool
}

func newCreateCmd() *cobra.Command {
	var f createFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user and report its recent activity",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if f.trace {
				traceOpts := []otelconfig.LocalOption{
					otelconfig.ServiceName("remoteuser"),
					otelconfig.Writer(cmd.ErrOrStderr()),
				}
				if f.pretty {
					traceOpts = append(traceOpts, otelconfig.PrettyPrint())
				}

				shutdown, initErr := otelconfig.Manage(otelconfig.Local(traceOpts...))
				if initErr != nil {
					return initErr
				}
				defer func() {
					shutdownErr := shutdown(context.Background())
					if err == nil {
						err = shutdownErr
					}
				}()
			}

			return create(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.endpoint, "endpoint", "http://localhost:8080", "base url of the users API")
	flags.StringVar(&f.username, "username", "", "username of the new user")
	flags.StringVar(&f.password, "password", "", "password of the new user")
	flags.StringVar(&f.configFile, "config", "", "yaml, json or toml file to read settings from")
	flags.BoolVar(&f.stats, statsFlag, false, "print statistics about the created user")
	flags.DurationVar(&f.timeout, "timeout", 10*time.Second, "timeout of each request attempt")
	flags.BoolVar(&f.trace, "trace", false, "write spans to stderr")
	flags.BoolVar(&f.pretty, "pretty", false, "indent spans written by --trace")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")

	return cmd
}

func create(cmd *cobra.Command, f createFlags) error {
	h := logHandler(cmd, cmd.ErrOrStderr())
	out := cmd.OutOrStdout()

	var srcs []config.Source
	if f.configFile != "" {
		srcs = append(srcs, config.FromFile(os.DirFS(filepath.Dir(f.configFile)), filepath.Base(f.configFile)))
	}
	srcs = append(srcs, config.FromEnv(EnvPrefix))

	opts := []blockbuilder.Option{
		blockbuilder.LogHandler(h),
		blockbuilder.WithSettings(srcs...),
	}
	if f.stats {
		opts = append(opts, blockbuilder.Flags(statsFlag))
	}

	api := remoteuser.NewClient(
		f.endpoint,
		remoteuser.Timeout(f.timeout),
		remoteuser.ClientLogHandler(h),
	)
	_, err := remoteuser.CreateUser(cmd.Context(), api, f.username, f.password, func(r *blockbuilder.Registry) {
		r.Set(remoteuser.LoggerSetting, slog.New(h))

		r.On(remoteuser.OnUserCreated, func(args ...any) any {
			user := args[0].(remoteuser.User)
			fmt.Fprintf(out, "created user %s (%s)\n", user.Username, user.ID)
			return nil
		})
		r.On(remoteuser.OnFinishLengthyTask, func(args ...any) any {
			activity := args[0].(remoteuser.Activity)
			fmt.Fprintf(out, "%d events in the last %s\n", activity.Events, activity.Window)
			return nil
		})

		if !r.Flag(statsFlag) {
			return
		}
		r.On(remoteuser.GenerateStatistics, func(args ...any) any {
			stats := args[0].(remoteuser.Stats)
			fmt.Fprintf(out, "stats: username=%s events=%d latency=%s\n", stats.Username, stats.Events, stats.Latency)
			return nil
		})
	}, opts...)
	return err
}
