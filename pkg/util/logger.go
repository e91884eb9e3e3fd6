package util

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Log levels, ordered by severity.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[int]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var levelColors = map[int]string{
	LevelDebug: "\033[34m", // blue
	LevelInfo:  "\033[32m", // green
	LevelWarn:  "\033[33m", // yellow
	LevelError: "\033[31m", // red
}

const colorReset = "\033[0m"

var currentLevel = LevelInfo

// SetLogLevel sets the minimum level that will be logged.
func SetLogLevel(name string) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		currentLevel = LevelDebug
	case "INFO":
		currentLevel = LevelInfo
	case "WARN", "WARNING":
		currentLevel = LevelWarn
	case "ERROR":
		currentLevel = LevelError
	default:
		log.Printf("Invalid log level %q, using INFO", name)
		currentLevel = LevelInfo
	}
}

func logWithLevel(level int, format string, args ...interface{}) {
	if level < currentLevel {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	message := fmt.Sprintf(format, args...)
	log.Printf("%s%s [%s] %s%s", levelColors[level], timestamp, levelNames[level], message, colorReset)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	logWithLevel(LevelDebug, format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	logWithLevel(LevelInfo, format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	logWithLevel(LevelWarn, format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	logWithLevel(LevelError, format, args...)
}

// Fatal logs an error message and exits.
func Fatal(format string, args ...interface{}) {
	logWithLevel(LevelError, format, args...)
	os.Exit(1)
}

// Init configures the logger from the environment.
func Init() {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		SetLogLevel(level)
	}

	// We print our own timestamp.
	log.SetFlags(0)
	log.SetOutput(os.Stdout)
}
