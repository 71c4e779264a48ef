package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

type LogEntry struct {
	Timestamp     string `json:"timestamp"`
	Level         string `json:"level"`
	Category      string `json:"category"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
	File          string `json:"file,omitempty"`
	Line          int    `json:"line,omitempty"`
}

type Logger struct {
	out          io.Writer
	logFile      *os.File
	colorEnabled bool
}

// New creates a logger writing colored lines to stdout and JSON lines to
// logs/eventhub-YYYY-MM-DD.log.
func New() *Logger {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Fatal("Failed to create logs directory:", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	logFileName := fmt.Sprintf("logs/eventhub-%s.log", timestamp)

	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal("Failed to create log file:", err)
	}

	return &Logger{
		out:          os.Stdout,
		logFile:      logFile,
		colorEnabled: true,
	}
}

// NewWithWriter creates a logger that writes plain lines to w only. Used in
// tests.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{out: w, colorEnabled: false}
}

func (l *Logger) log(level LogLevel, category, message, correlationID string) {
	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	}

	entry := LogEntry{
		Timestamp:     time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Level:         l.levelToString(level),
		Category:      strings.ToUpper(category),
		Message:       message,
		CorrelationID: correlationID,
		File:          file,
		Line:          line,
	}

	fmt.Fprint(l.out, l.formatTerminalOutput(entry))

	if l.logFile != nil {
		l.logFile.WriteString(l.formatJSONOutput(entry) + "\n")
	}
}

func (l *Logger) formatTerminalOutput(entry LogEntry) string {
	timestamp := entry.Timestamp[11:19]

	if !l.colorEnabled {
		if entry.CorrelationID != "" {
			return fmt.Sprintf("%s %-5s [%-10s] %s correlationId=%s\n",
				timestamp, entry.Level, entry.Category, entry.Message, entry.CorrelationID)
		}
		return fmt.Sprintf("%s %-5s [%-10s] %s\n", timestamp, entry.Level, entry.Category, entry.Message)
	}

	var levelColor, categoryColor *color.Color

	switch entry.Level {
	case "DEBUG":
		levelColor = color.New(color.FgCyan)
		categoryColor = color.New(color.FgCyan, color.Bold)
	case "INFO":
		levelColor = color.New(color.FgGreen)
		categoryColor = color.New(color.FgGreen, color.Bold)
	case "WARN":
		levelColor = color.New(color.FgYellow)
		categoryColor = color.New(color.FgYellow, color.Bold)
	case "ERROR", "FATAL":
		levelColor = color.New(color.FgRed)
		categoryColor = color.New(color.FgRed, color.Bold)
	default:
		levelColor = color.New(color.FgWhite)
		categoryColor = color.New(color.FgWhite, color.Bold)
	}

	timeStr := color.New(color.FgBlue).Sprintf("%s", timestamp)
	levelStr := levelColor.Sprintf("%-5s", entry.Level)
	categoryStr := categoryColor.Sprintf("[%-10s]", entry.Category)
	messageStr := entry.Message

	if entry.CorrelationID != "" {
		corrStr := color.New(color.FgMagenta).Sprintf(" correlationId=%s", entry.CorrelationID)
		return fmt.Sprintf("%s %s %s %s%s\n", timeStr, levelStr, categoryStr, messageStr, corrStr)
	}

	return fmt.Sprintf("%s %s %s %s\n", timeStr, levelStr, categoryStr, messageStr)
}

func (l *Logger) formatJSONOutput(entry LogEntry) string {
	jsonBytes, _ := json.Marshal(entry)
	return string(jsonBytes)
}

func (l *Logger) levelToString(level LogLevel) string {
	switch level {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "INFO"
	}
}

func (l *Logger) Debug(category, message string) {
	l.log(DEBUG, category, message, "")
}

func (l *Logger) Info(category, message string) {
	l.log(INFO, category, message, "")
}

func (l *Logger) Warn(category, message string) {
	l.log(WARN, category, message, "")
}

func (l *Logger) Error(category, message string) {
	l.log(ERROR, category, message, "")
}

func (l *Logger) Fatal(category, message string) {
	l.log(FATAL, category, message, "")
	os.Exit(1)
}

// ErrorCtx logs an error line tagged with the request's correlation id.
func (l *Logger) ErrorCtx(category, message, correlationID string) {
	l.log(ERROR, category, message, correlationID)
}

// Request emits the one access-log line per handled request.
func (l *Logger) Request(method, path string, status int, durationMs int64, correlationID string) {
	l.log(INFO, "HTTP",
		fmt.Sprintf("request method=%s path=%s status=%d durationMs=%d", method, path, status, durationMs),
		correlationID)
}

func (l *Logger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
}
