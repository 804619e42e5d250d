// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package blockbuilder lets a library author expose an open ended set of
// named hooks and settings which the caller of their function can fill in.
//
// A [Registry] is produced by [Build] from two configuration procedures. The
// default procedure, given with [Defaults], belongs to the library author and
// runs first. The target procedure belongs to the caller and runs second, so
// anything it sets overrides what the defaults established.
//
// # Attributes
//
// Every name referenced on a Registry resolves to an [Attribute], which is
// created the first time the name is seen. Supplying arguments or a
// [Callback] writes the attribute; supplying neither reads it:
//
//	r.On("on_user_created", func(args ...any) any {
//	    return save(args[0].(User))
//	})
//	r.Define("greeting", "hello", "world")
//
//	r.Attr("greeting").Values()        // [hello world]
//	r.Attr("on_user_created").Invoke(u) // calls the callback
//	r.Attr("never_defined").Invoke(u)   // nil, nothing happens
//
// # Settings
//
// Settings are a separate, explicit key value table written with
// [Registry.Set]. A plain read through [Registry.Get] returns the setting
// when one exists and falls through to the attribute otherwise.
//
// # Required attributes
//
// [Registry.Require] marks names which must be written by the time both
// procedures have run; if one is not, Build fails with a [MissingRequiredError]:
//
//	r, err := blockbuilder.Build(ctx, target,
//	    blockbuilder.Defaults(func(r *blockbuilder.Registry) {
//	        r.Set("logger", slog.Default())
//	        r.Require("on_user_created")
//	    }),
//	)
package blockbuilder
