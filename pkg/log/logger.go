// Package log provides the logging facade used across aulev.
package log

import (
	"fmt"
	"strings"
)

type Logger interface {
	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

type Fields map[string]interface{}

func (f Fields) String() string {
	str := make([]string, 0, len(f))
	for k, v := range f {
		str = append(str, fmt.Sprintf("%s=%+v", k, v))
	}
	return strings.Join(str, " ")
}
