package logger

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Environment variable to configure log file path.
const envLogPath = "KVCACHE_LOG"

var (
	log           = zerolog.Nop()
	logFile       *os.File
	isInitialized bool
)

// InitFromEnv initializes the logger using KVCACHE_LOG or a default path.
func InitFromEnv() error {
	path := os.Getenv(envLogPath)
	if path == "" {
		// Default to the directory where the executable is located
		if exePath, err := os.Executable(); err == nil {
			exeDir := filepath.Dir(exePath)
			path = filepath.Join(exeDir, "kvcache.log")
		} else {
			// Fallback to current directory if executable path cannot be determined
			path = "./kvcache.log"
		}
	}
	return Init(path)
}

// Init initializes the logger to write structured lines to the provided file
// path. It creates parent directories if needed and opens the file in append
// mode.
func Init(path string) error {
	if isInitialized {
		return nil
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = f
	log = zerolog.New(f).With().Timestamp().Logger()
	isInitialized = true
	return nil
}

// Close closes the underlying log file, if open.
func Close() error {
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		log = zerolog.Nop()
		isInitialized = false
		return err
	}
	return nil
}

// Printf logs a formatted message at info level.
func Printf(format string, args ...any) { Infof(format, args...) }

// Infof logs informational messages.
func Infof(format string, args ...any) {
	ensure()
	log.Info().Msgf(format, args...)
}

// Warnf logs warnings.
func Warnf(format string, args ...any) {
	ensure()
	log.Warn().Msgf(format, args...)
}

// Errorf logs errors.
func Errorf(format string, args ...any) {
	ensure()
	log.Error().Msgf(format, args...)
}

func ensure() {
	if !isInitialized {
		// Fallback: initialize with default if not already.
		_ = InitFromEnv()
	}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
