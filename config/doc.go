// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides very easy to use and extensible configuration management capabilities.
//
// A [Source] knows how to serialize itself into a key value [Store]. Sources are
// read in order by [Read], with later sources overriding values set by earlier
// ones, and the merged result can be decoded into a struct with [Manager.Unmarshal]:
//
//	m, err := config.Read(
//	    config.Map{"activity": map[string]any{"window": "1h"}},
//	    config.FromYaml(config.NewFileReader(os.DirFS("."), "config.yaml")),
//	    config.FromEnv("REMOTEUSER_"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	var cfg struct {
//	    Activity struct {
//	        Window time.Duration `config:"window"`
//	    } `config:"activity"`
//	}
//	err = m.Unmarshal(&cfg)
package config
