package logging

import (
	"io"
	"os"
	"path"
	"time"

	"finkiranked/internal/platform/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global zerolog logger: console output always, plus a
// rolling file when LOG_DIRECTORY is set.
func Init() {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	writers := []io.Writer{console}
	if rolling := newRollingFile(config.AppConfig); rolling != nil {
		writers = append(writers, rolling)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

func newRollingFile(conf *config.Config) io.Writer {
	if conf.LogDirectory == "" {
		return nil
	}
	if err := os.MkdirAll(conf.LogDirectory, 0744); err != nil {
		log.Error().Err(err).Str("path", conf.LogDirectory).Msg("can't create log directory")
		return nil
	}

	return &lumberjack.Logger{
		Filename:   path.Join(conf.LogDirectory, conf.LogFileName),
		MaxBackups: 3,  // files
		MaxSize:    50, // megabytes
		MaxAge:     28, // days
	}
}
