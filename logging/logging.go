// Package logging wraps logrus with the free-form, subject-tagged leveled
// logging convention rclone's own fs.Logf/fs.Errorf/fs.Debugf functions
// use: callers pass whatever they're talking about (a mapping name, a
// SubPath, or nil) plus a printf-style message, and the subject ends up as
// a structured field rather than string-concatenated into the message.
package logging

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Logger is the package-level logrus instance. Tests may swap its output.
var Logger = logrus.StandardLogger()

func entry(subject any) *logrus.Entry {
	if subject == nil {
		return logrus.NewEntry(Logger)
	}
	return Logger.WithField("subject", fmt.Sprint(subject))
}

// Debugf logs at debug level.
func Debugf(subject any, format string, args ...any) {
	entry(subject).Debugf(format, args...)
}

// Logf logs at info level, matching rclone's fs.Logf.
func Logf(subject any, format string, args ...any) {
	entry(subject).Infof(format, args...)
}

// Errorf logs at error level, matching rclone's fs.Errorf.
func Errorf(subject any, format string, args ...any) {
	entry(subject).Errorf(format, args...)
}

// ForMapping returns an entry pre-tagged with a mapping's name and local
// root, so every log line emitted while syncing that mapping carries both
// as structured fields without every call site repeating them.
func ForMapping(name, localRoot string) *logrus.Entry {
	return Logger.WithFields(logrus.Fields{
		"mapping": name,
		"root":    localRoot,
	})
}
