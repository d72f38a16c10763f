package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "INFO"
}

type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

// Options configures a Logger. Dir enables the dated JSON log file;
// Terminal receives colored lines and defaults to stdout.
type Options struct {
	Dir      string
	Name     string
	Terminal io.Writer
	MinLevel Level
	NoColor  bool
}

type Logger struct {
	mu       sync.Mutex
	terminal io.Writer
	file     *os.File
	json     io.Writer
	min      Level
	noColor  bool
}

func New(opts Options) (*Logger, error) {
	l := &Logger{
		terminal: opts.Terminal,
		min:      opts.MinLevel,
		noColor:  opts.NoColor,
	}
	if l.terminal == nil {
		l.terminal = os.Stdout
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		name := opts.Name
		if name == "" {
			name = "techcrew"
		}
		path := filepath.Join(opts.Dir, fmt.Sprintf("%s-%s.log", name, time.Now().Format("2006-01-02")))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		l.json = f
		l.Info("LOGGER", fmt.Sprintf("Log file: %s", path))
	}
	return l, nil
}

// NewJSON writes JSON entries to w and nothing to the terminal.
func NewJSON(w io.Writer) *Logger {
	return &Logger{terminal: io.Discard, json: w, noColor: true}
}

// Discard drops every entry.
func Discard() *Logger {
	return &Logger{terminal: io.Discard, noColor: true}
}

func (l *Logger) log(level Level, category, message string) {
	if l == nil || level < l.min {
		return
	}
	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	}

	entry := Entry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Level:     level.String(),
		Category:  strings.ToUpper(category),
		Message:   message,
		File:      file,
		Line:      line,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.terminal, l.formatTerminal(entry))
	if l.json != nil {
		b, _ := json.Marshal(entry)
		l.json.Write(append(b, '\n'))
	}
}

func (l *Logger) formatTerminal(entry Entry) string {
	ts := entry.Timestamp[11:19]
	if l.noColor {
		return fmt.Sprintf("%s %-5s [%-10s] %s\n", ts, entry.Level, entry.Category, entry.Message)
	}

	var levelColor, categoryColor *color.Color
	switch entry.Level {
	case "DEBUG":
		levelColor = color.New(color.FgCyan)
		categoryColor = color.New(color.FgCyan, color.Bold)
	case "WARN":
		levelColor = color.New(color.FgYellow)
		categoryColor = color.New(color.FgYellow, color.Bold)
	case "ERROR", "FATAL":
		levelColor = color.New(color.FgRed)
		categoryColor = color.New(color.FgRed, color.Bold)
	default:
		levelColor = color.New(color.FgGreen)
		categoryColor = color.New(color.FgGreen, color.Bold)
	}

	out := fmt.Sprintf("%s %s %s %s",
		color.New(color.FgBlue).Sprint(ts),
		levelColor.Sprintf("%-5s", entry.Level),
		categoryColor.Sprintf("[%-10s]", entry.Category),
		entry.Message)
	if entry.File != "" && entry.Line > 0 {
		out += color.New(color.FgMagenta).Sprintf(" (%s:%d)", entry.File, entry.Line)
	}
	return out + "\n"
}

func (l *Logger) Debug(category, message string) { l.log(DEBUG, category, message) }
func (l *Logger) Info(category, message string)  { l.log(INFO, category, message) }
func (l *Logger) Warn(category, message string)  { l.log(WARN, category, message) }
func (l *Logger) Error(category, message string) { l.log(ERROR, category, message) }

func (l *Logger) Fatal(category, message string) {
	l.log(FATAL, category, message)
	os.Exit(1)
}

func (l *Logger) LogAPI(method, path string, status int, duration time.Duration) {
	l.log(INFO, "API", fmt.Sprintf("%s %s - %d (%s)", method, path, status, duration))
}

func (l *Logger) LogChange(table, op, id string) {
	l.log(INFO, "CHANGE", fmt.Sprintf("[%s] %s - %s", op, table, id))
}

func (l *Logger) LogKafka(action, topic, message string) {
	l.log(INFO, "KAFKA", fmt.Sprintf("[%s] %s - %s", action, topic, message))
}

func (l *Logger) LogDatabase(operation, table, message string) {
	l.log(INFO, "DATABASE", fmt.Sprintf("[%s] %s - %s", operation, table, message))
}

func (l *Logger) LogSecurity(event, message string) {
	l.log(WARN, "SECURITY", fmt.Sprintf("[%s] %s", event, message))
}

func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.Info("LOGGER", "Closing log file")
	return l.file.Close()
}
