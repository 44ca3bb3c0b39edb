package pkg

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelErrOnly
	LogLevelDebug
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelNone:
		return "none"
	case LogLevelDebug:
		return "debug"
	default:
		return "error"
	}
}

// ParseLogLevel accepts the names used in config files and env vars.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "none", "off", "quiet":
		return LogLevelNone, nil
	case "", "error", "err":
		return LogLevelErrOnly, nil
	case "debug", "all":
		return LogLevelDebug, nil
	}
	return LogLevelErrOnly, fmt.Errorf("Invalid log level: %s", level)
}

var log_level = LogLevelErrOnly

func GetLogLevel() LogLevel { return log_level }

func SetLogLevel(level LogLevel) {
	log_level = level

	var out, err_out io.Writer = io.Discard, io.Discard
	switch level {
	case LogLevelErrOnly:
		err_out = os.Stderr
	case LogLevelDebug:
		out, err_out = os.Stdout, os.Stderr
	}

	error_logger.SetOutput(err_out)
	fatal_logger.SetOutput(err_out)
	info_logger.SetOutput(out)
	warn_logger.SetOutput(out)
	debug_logger.SetOutput(out)

	info_logger.Println("log level set to", level)
}

var (
	info_logger  = log.New(io.Discard, "INFO: ", log.Lshortfile|log.LstdFlags)
	error_logger = log.New(os.Stderr, "ERROR: ", log.Lshortfile|log.LstdFlags)
	fatal_logger = log.New(os.Stderr, "FATAL: ", log.Lshortfile|log.LstdFlags)
	warn_logger  = log.New(io.Discard, "WARN: ", log.Lshortfile|log.LstdFlags)
	debug_logger = log.New(io.Discard, "DEBUG: ", log.Lshortfile|log.LstdFlags)
)

var (
	InfoLog  = info_logger.Println
	ErrorLog = error_logger.Println
	FatalLog = fatal_logger.Fatalln
	WarnLog  = warn_logger.Println
	DebugLog = debug_logger.Println
)
