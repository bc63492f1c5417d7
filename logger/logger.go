// Copyright (C) 2020-2021,  0xN3utr0n

// Ktrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Ktrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with Ktrace. If not, see <http://www.gnu.org/licenses/>.

package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// From zerolog color-types
const (
	colorBlack = iota + 30
	colorRed
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
	colorCyan
	colorWhite

	colorBold     = 1
	colorDarkGray = 90
)

type Logger struct {
	logger *zerolog.Logger
}

// Only one global stdout instance to avoid races
var stdout zerolog.ConsoleWriter

// InfoS Send Info type message.
func (l *Logger) InfoS(msg string, module string) {
	l.logger.Info().Str("Module", module).Msg(msg)
}

// DebugS Send Debug type message.
func (l *Logger) DebugS(msg string, module string) {
	l.logger.Debug().Str("Module", module).Msg(msg)
}

// WarnS Send Warn type message.
func (l *Logger) WarnS(msg string, module string) {
	l.logger.Warn().Str("Module", module).Msg(msg)
}

// ErrorS Send Error type message.
func (l *Logger) ErrorS(err error, module string) {
	l.logger.Error().Str("Module", module).Err(err).Send()
}

// FatalS Send Error type message and terminate the program.
func (l *Logger) FatalS(msg error, module string) {
	l.logger.Error().Str("Module", module).Str("Type", "Fatal").Err(msg).Send()
	os.Exit(1)
}

func (l *Logger) Info(module string) *zerolog.Event {
	return l.logger.Info().Str("Module", module)
}

func (l *Logger) Warn(module string) *zerolog.Event {
	return l.logger.Warn().Str("Module", module)
}

func (l *Logger) Debug(module string) *zerolog.Event {
	return l.logger.Debug().Str("Module", module)
}

func (l *Logger) Error(err error, module string) *zerolog.Event {
	return l.logger.Error().Str("Module", module).Err(err)
}

// New creates a new Logger instance.
func New(file string, console bool) (*Logger, error) {
	var w io.Writer

	fd, err := os.OpenFile(file, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	w = fd
	if console {
		stdout = newConsole()
		w = io.MultiWriter(stdout, fd)
	}

	l := zerolog.New(w).With().Timestamp().Logger()
	return &Logger{logger: &l}, nil
}

// SetDebug Sets the global debug flag.
func SetDebug(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// newConsole Creates a new logger pointing to stdout.
func newConsole() zerolog.ConsoleWriter {
	// Only allow one stdout Writer
	if stdout.Out != nil {
		return stdout
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: false, TimeFormat: time.RFC3339}

	console.FormatTimestamp = func(i interface{}) string {
		return fmt.Sprintf("\x1b[%dm%v\x1b[0m", colorWhite, i)
	}

	console.FormatFieldValue = func(i interface{}) string {
		switch i {
		case "Skip":
			return fmt.Sprintf("\x1b[%dm%s\x1b[0m", colorYellow, i)
		case "Fatal":
			return fmt.Sprintf("\x1b[%dm%s\x1b[0m", colorRed, i)
		default:
			return fmt.Sprintf("%s", i)
		}
	}

	return console
}
