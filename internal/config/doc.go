// Package config loads abbrmark settings.
//
// Settings live in a single TOML file. Values missing from the file keep
// their defaults, unknown keys are rejected and the result is validated
// before use.
//
// # File Format
//
//	[abbreviation]
//	auto_mark = true            # or "markup" / "stylesheet"
//	preview = "stylesheet"      # or true / false / "markup"
//	marker_selectors = ["text.html - (entity, punctuation.definition.tag.end)"]
//	css_value_selector = "meta.property-value | punctuation.terminator.rule"
//	region_key = "emmet-abbreviation"
//
//	[engine]
//	script = ""                 # Lua expansion script, empty for the built-in one
//	timeout_ms = 2000
//
//	[editor]
//	auto_pair = true
//	tab_width = 4
//
//	[log]
//	level = "info"
//	development = false
//	file = ""                   # empty logs to stderr
//
// # Live Reload
//
// Watch reloads the file whenever it changes:
//
//	err := config.Watch(ctx, path, func(cfg *config.Config, err error) {
//	    if err != nil {
//	        logger.Warn("config reload failed", zap.Error(err))
//	        return
//	    }
//	    apply(cfg)
//	})
package config
