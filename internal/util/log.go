package util

import (
	"fmt"
	"io"
	"os"
)

// Logger writes diagnostics to its sink, keeping stdout free for the
// credential_process payload.
type Logger struct {
	out   io.Writer
	Trace bool
}

func NewLogger(out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{out: out}
}

func (l *Logger) Infof(format string, msg ...any) {
	fmt.Fprintln(l.out, fmt.Sprintf(format, msg...))
}

func (l *Logger) Warnf(format string, msg ...any) {
	fmt.Fprintln(l.out, "WARNING: "+fmt.Sprintf(format, msg...))
}

func (l *Logger) Tracef(format string, msg ...any) {
	if l.Trace {
		fmt.Fprintln(l.out, fmt.Sprintf(format, msg...))
	}
}

func Exit(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	os.Exit(1)
}
