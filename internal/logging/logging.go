// Package logging configures the process wide gommon logger.
package logging

import (
	"io"
	"os"

	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const header = "${time_rfc3339} ${level} ${short_file}:${line}"

var levels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup sets the log level and header. When file is not empty, output also
// goes to a rotating log file; the returned Closer closes it.
func Setup(level, file string) (io.Closer, error) {
	lvl, ok := levels[level]
	if !ok {
		return nil, errors.Errorf("unknown log level %q", level)
	}
	log.SetLevel(lvl)
	log.SetHeader(header)

	if file == "" {
		log.SetOutput(os.Stdout)
		return nopCloser{}, nil
	}

	w := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    32, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, w))
	return w, nil
}
