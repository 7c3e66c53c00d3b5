package main

import (
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

// configureLogging routes the lox.* loggers to stderr or the configured
// file. Each verbosity step above 0 adds a level; 2 includes debug.
func configureLogging(cfg logConfig) {
	var path *string
	if cfg.File != "" {
		path = &cfg.File
	}
	commonlog.Configure(cfg.Verbosity, path)
}
