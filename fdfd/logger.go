// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fdfd

import (
	"fmt"
	"io"
	"os"
)

// LogLevel controls the frequency and type of logger output
type LogLevel int

const (
	// LogNoop no output is generated (level < 0)
	LogNoop LogLevel = -1
	// LogLast print only the banner and the exit summary
	LogLast LogLevel = 0
	// LogEval print also the residual every time the monitor is notified
	LogEval LogLevel = 1
	// LogTrace print the recurrence scalars of every iteration
	LogTrace LogLevel = 99
	// LogVerbose print also the component norms of the source and the final field
	LogVerbose LogLevel = 101
)

// Logger handles logging output for the solver.
// Note the writers must be thread-safe when a Solver is shared by goroutines.
type Logger struct {
	Level LogLevel
	Msg   io.Writer // Writer to output log messages.
	Out   io.Writer // Writer for the residual table.
}

func (l *Logger) withDefaults() Logger {
	if l == nil {
		return Logger{Level: LogNoop, Msg: io.Discard, Out: io.Discard}
	}
	c := *l
	if c.Msg == nil {
		c.Msg = os.Stdout
	}
	if c.Out == nil {
		c.Out = os.Stderr
	}
	return c
}

func (l *Logger) enable(level LogLevel) bool {
	return l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}

func (l *Logger) out(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Out, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Out, format)
	}
}
