// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package maskslog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	Message string `json:"msg"`
	Secret  string `json:"secret"`
	User    struct {
		Secret string `json:"secret"`
	} `json:"user"`
}

func decode(t *testing.T, buf *bytes.Buffer) record {
	t.Helper()

	var r record
	err := json.Unmarshal(buf.Bytes(), &r)
	assert.Nil(t, err)
	return r
}

func TestHandler_Handle(t *testing.T) {
	t.Run("will not mask attrs", func(t *testing.T) {
		t.Run("if no masking funcs are registered", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{})))

			logger.Info("hello world", slog.String("secret", "super duper secret value"))

			r := decode(t, &buf)
			if !assert.Equal(t, "hello world", r.Message) {
				return
			}
			if !assert.Equal(t, "super duper secret value", r.Secret) {
				return
			}
		})

		t.Run("if slog.Attr key does not match a masking func", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Attr("random", AnonymousStringAttr),
			))

			logger.Info("hello world", slog.String("secret", "super duper secret value"))

			r := decode(t, &buf)
			if !assert.Equal(t, "super duper secret value", r.Secret) {
				return
			}
		})
	})

	t.Run("will mask attrs", func(t *testing.T) {
		t.Run("if the attr is passed with the record", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Attr("secret", AnonymousStringAttr),
			))

			logger.Info("hello world", slog.String("secret", "super duper secret value"))

			r := decode(t, &buf)
			if !assert.Equal(t, "****", r.Secret) {
				return
			}
		})

		t.Run("if the attr is attached with With", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Attr("secret", AnonymousStringAttr),
			))

			logger.With(slog.String("secret", "super duper secret value")).Info("hello world")

			r := decode(t, &buf)
			if !assert.Equal(t, "****", r.Secret) {
				return
			}
		})

		t.Run("if the attr is nested in a group", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Attr("secret", AnonymousStringAttr),
			))

			logger.Info("hello world", slog.Group("user", slog.String("secret", "super duper secret value")))

			r := decode(t, &buf)
			if !assert.Equal(t, "****", r.User.Secret) {
				return
			}
		})

		t.Run("if the logger was derived with WithGroup", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Attr("secret", AnonymousStringAttr),
			))

			logger.WithGroup("user").Info("hello world", slog.String("secret", "super duper secret value"))

			r := decode(t, &buf)
			if !assert.Equal(t, "****", r.User.Secret) {
				return
			}
		})
	})

	t.Run("will mask the message", func(t *testing.T) {
		t.Run("if a message masking func is registered", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewJSONHandler(&buf, &slog.HandlerOptions{}),
				Message(func(s string) string {
					return strings.ReplaceAll(s, "hunter2", "****")
				}),
			))

			logger.Info("password is hunter2")

			r := decode(t, &buf)
			if !assert.Equal(t, "password is ****", r.Message) {
				return
			}
		})
	})
}
