package mlog

import (
	"fmt"
	"log"
	"os"
)

type stdoutLogger struct {
	level Level
}

func newStdoutLogger(level Level) *stdoutLogger {
	log.SetFlags(log.Ldate | log.Lmicroseconds)
	return &stdoutLogger{level: level}
}

func (l *stdoutLogger) IsLevelEnabled(level Level) bool {
	return l.level >= level
}

func (l *stdoutLogger) Log(level Level, v ...any) {
	if l.IsLevelEnabled(level) {
		log.Println(getLevelTag(level) + fmt.Sprint(v...))
	}
	if level == FatalLevel {
		os.Exit(1)
	}
}

func (l *stdoutLogger) Logf(level Level, format string, v ...any) {
	if l.IsLevelEnabled(level) {
		log.Println(getLevelTag(level) + fmt.Sprintf(format, v...))
	}
	if level == FatalLevel {
		os.Exit(1)
	}
}
