// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/z5labs/blockbuilder/internal/remoteuser"
	"github.com/z5labs/blockbuilder/pkg/health"
	"github.com/z5labs/blockbuilder/pkg/slogfield"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an in-memory users API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			h := logHandler(cmd, cmd.ErrOrStderr())
			api := remoteuser.NewServer(remoteuser.ServerLogHandler(h))
			return serve(cmd.Context(), ls, slog.New(h), api.Handler(), new(health.Binary))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	return cmd
}

// serve runs api on ls until ctx is cancelled. ready is marked healthy once
// the server starts accepting connections and unhealthy before it shuts down.
func serve(ctx context.Context, ls net.Listener, log *slog.Logger, api http.Handler, ready *health.Binary) error {
	mux := http.NewServeMux()
	mux.Handle("/", api)
	mux.Handle("GET /health/readiness", health.Handler(ready))

	s := &http.Server{
		Handler: mux,
	}
	defer ready.MarkUnhealthy()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		ready.MarkUnhealthy()

		defer log.Info("shut down server")
		log.Info("shutting down server")
		return s.Shutdown(context.Background())
	})
	g.Go(func() error {
		ready.MarkHealthy()
		log.Info("started server", slogfield.String("addr", ls.Addr().String()))
		return s.Serve(ls)
	})

	err := g.Wait()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	log.Error("server encountered unexpected error", slogfield.Error(err))
	return err
}
