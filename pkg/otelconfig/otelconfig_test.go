// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelconfig

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestManage(t *testing.T) {
	t.Run("will export spans to the configured writer", func(t *testing.T) {
		var buf bytes.Buffer
		shutdown, err := Manage(Local(ServiceName("test"), Writer(&buf)))
		require.Nil(t, err)

		_, span := otel.Tracer("otelconfig_test").Start(context.Background(), "exported")
		span.End()

		err = shutdown(context.Background())
		require.Nil(t, err)

		if !assert.Contains(t, buf.String(), `"Name":"exported"`) {
			return
		}
		if !assert.Contains(t, buf.String(), `"Value":"test"`) {
			return
		}
	})

	t.Run("will indent the exported spans", func(t *testing.T) {
		t.Run("if PrettyPrint is set", func(t *testing.T) {
			var buf bytes.Buffer
			shutdown, err := Manage(Local(ServiceName("test"), Writer(&buf), PrettyPrint()))
			require.Nil(t, err)

			_, span := otel.Tracer("otelconfig_test").Start(context.Background(), "exported")
			span.End()

			err = shutdown(context.Background())
			require.Nil(t, err)

			if !assert.Contains(t, buf.String(), "\n\t\"Name\": \"exported\"") {
				return
			}
		})
	})
}
