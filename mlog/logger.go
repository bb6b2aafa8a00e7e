package mlog

type Level uint32

const (
	FatalLevel Level = iota
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

func getLevelTag(level Level) string {
	switch level {
	case FatalLevel:
		return "[F] "
	case ErrorLevel:
		return "[E] "
	case WarnLevel:
		return "[W] "
	case InfoLevel:
		return "[I] "
	case DebugLevel:
		return "[D] "
	case TraceLevel:
		return "[T] "
	}
	return "[?] "
}

type Logger interface {
	Log(level Level, v ...any)
	Logf(level Level, format string, v ...any)
}

var logger Logger

func SetLogger(l Logger) {
	logger = l
}

func UseStdLogger(level Level) {
	SetLogger(newStdoutLogger(level))
}

func Trace(v ...any) {
	if logger != nil {
		logger.Log(TraceLevel, v...)
	}
}

func Tracef(format string, v ...any) {
	if logger != nil {
		logger.Logf(TraceLevel, format, v...)
	}
}

func Debug(v ...any) {
	if logger != nil {
		logger.Log(DebugLevel, v...)
	}
}

func Debugf(format string, v ...any) {
	if logger != nil {
		logger.Logf(DebugLevel, format, v...)
	}
}

func Info(v ...any) {
	if logger != nil {
		logger.Log(InfoLevel, v...)
	}
}

func Infof(format string, v ...any) {
	if logger != nil {
		logger.Logf(InfoLevel, format, v...)
	}
}

func Warn(v ...any) {
	if logger != nil {
		logger.Log(WarnLevel, v...)
	}
}

func Warnf(format string, v ...any) {
	if logger != nil {
		logger.Logf(WarnLevel, format, v...)
	}
}

func Error(v ...any) {
	if logger != nil {
		logger.Log(ErrorLevel, v...)
	}
}

func Errorf(format string, v ...any) {
	if logger != nil {
		logger.Logf(ErrorLevel, format, v...)
	}
}

func Fatal(v ...any) {
	if logger != nil {
		logger.Log(FatalLevel, v...)
	}
}

func Fatalf(format string, v ...any) {
	if logger != nil {
		logger.Logf(FatalLevel, format, v...)
	}
}
