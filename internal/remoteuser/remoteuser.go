// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package remoteuser creates users against a remote users API and lets the
// caller hook into each step through a blockbuilder target procedure.
//
// The caller must define on_user_created. It may also define
// on_finish_lengthy_task and generate_statistics, override the logger
// setting with a *slog.Logger and set activity.window to a duration.
package remoteuser

import (
	"context"
	"log/slog"
	"time"

	"github.com/z5labs/blockbuilder"
	"github.com/z5labs/blockbuilder/pkg/noop"
	"github.com/z5labs/blockbuilder/pkg/slogfield"
)

// Names of the attributes and settings CreateUser understands.
const (
	OnUserCreated       = "on_user_created"
	OnFinishLengthyTask = "on_finish_lengthy_task"
	GenerateStatistics  = "generate_statistics"
	LoggerSetting       = "logger"
)

// DefaultActivityWindow is used when activity.window is not set.
const DefaultActivityWindow = time.Hour

// Settings are decoded from the registry settings table.
type Settings struct {
	Activity struct {
		Window time.Duration `config:"window"`
	} `config:"activity"`
}

// CreateUser creates the user, then fetches its recent activity.
//
// on_user_created is invoked with the User as soon as the API has created it,
// so the caller can persist it before the slower activity lookup runs.
// on_finish_lengthy_task is invoked with the Activity. Statistics are only
// computed, and generate_statistics only invoked, if the caller defined it.
func CreateUser(ctx context.Context, api *Client, username, password string, target blockbuilder.Procedure, opts ...blockbuilder.Option) (User, error) {
	opts = append(opts, blockbuilder.Defaults(func(r *blockbuilder.Registry) {
		r.Set(LoggerSetting, noop.Logger())
		r.Require(OnUserCreated)
	}))

	r, err := blockbuilder.Build(ctx, target, opts...)
	if err != nil {
		return User{}, err
	}

	var settings Settings
	err = r.Decode(&settings)
	if err != nil {
		return User{}, err
	}
	window := settings.Activity.Window
	if window <= 0 {
		window = DefaultActivityWindow
	}

	log := logger(r)
	log.InfoContext(ctx, "creating remote user", slogfield.String("username", username))

	user, err := api.CreateUser(ctx, username, password)
	if err != nil {
		log.ErrorContext(ctx, "failed to create remote user", slogfield.Error(err))
		return User{}, err
	}
	r.Call(OnUserCreated, user)

	start := time.Now()
	activity, err := api.Activity(ctx, user.ID, window)
	if err != nil {
		log.ErrorContext(ctx, "failed to fetch user activity", slogfield.Error(err))
		return user, err
	}
	latency := time.Since(start)
	log.InfoContext(
		ctx,
		"fetched user activity",
		slogfield.String("user_id", user.ID),
		slogfield.Duration("latency", latency),
	)
	r.Call(OnFinishLengthyTask, activity)

	if r.IsDefined(GenerateStatistics) {
		r.Call(GenerateStatistics, Stats{
			Username: user.Username,
			Latency:  latency,
			Events:   activity.Events,
		})
	}
	return user, nil
}

func logger(r *blockbuilder.Registry) *slog.Logger {
	log, ok := r.Get(LoggerSetting).(*slog.Logger)
	if !ok || log == nil {
		return noop.Logger()
	}
	return log
}
