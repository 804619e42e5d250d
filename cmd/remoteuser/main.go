// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command remoteuser serves an in-memory users API and creates users against it.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/z5labs/blockbuilder/pkg/maskslog"
	"github.com/z5labs/blockbuilder/pkg/otelslog"

	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "remoteuser",
		Short:        "Create users against a remote users API",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCreateCmd())
	return cmd
}

// logHandler writes JSON logs to w with passwords masked.
func logHandler(cmd *cobra.Command, w io.Writer) slog.Handler {
	lvl := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		lvl = slog.LevelDebug
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     lvl,
	})
	// records at the configured level also become span events when tracing
	return maskslog.NewHandler(
		otelslog.NewHandler(h, otelslog.EventLevel(lvl)),
		maskslog.Attr("password", maskslog.AnonymousStringAttr),
	)
}
