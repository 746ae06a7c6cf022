package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из конфигурации (регистр не важен)
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("неизвестный уровень логирования: %q", s)
	}
}

// Options задаёт вывод логгера. Пустой Dir отключает запись в файл.
type Options struct {
	Dir          string
	ConsoleLevel LogLevel
	FileLevel    LogLevel
}

// DefaultOptions возвращает настройки по умолчанию: консоль с INFO, файлы не пишутся
func DefaultOptions() Options {
	return Options{ConsoleLevel: INFO, FileLevel: DEBUG}
}

var (
	optionsMu      sync.RWMutex
	currentOptions = DefaultOptions()
)

// Configure задаёт настройки для всех логгеров, создаваемых после вызова
func Configure(opts Options) {
	optionsMu.Lock()
	defer optionsMu.Unlock()
	currentOptions = opts
}

func options() Options {
	optionsMu.RLock()
	defer optionsMu.RUnlock()
	return currentOptions
}

// Logger представляет логгер компонента. Методы nil-логгера ничего не делают.
type Logger struct {
	mu              sync.Mutex
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
}

// NewLogger создает логгер компонента с текущими настройками
func NewLogger(component string) (*Logger, error) {
	return NewLoggerWithOptions(component, options())
}

// NewLoggerWithOptions создает логгер компонента с явными настройками
func NewLoggerWithOptions(component string, opts Options) (*Logger, error) {
	logger := &Logger{
		component:       component,
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		minConsoleLevel: opts.ConsoleLevel,
		minFileLevel:    opts.FileLevel,
	}

	if opts.Dir == "" {
		return logger, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", opts.Dir, err)
	}

	// Файл для логов с временной меткой
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", component, timestamp))

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
	}

	logger.file = file
	logger.fileLogger = log.New(file, "", log.LstdFlags)
	return logger, nil
}

// Component возвращает имя компонента
func (l *Logger) Component() string {
	if l == nil {
		return ""
	}
	return l.component
}

// SetLevels меняет минимальные уровни вывода
func (l *Logger) SetLevels(consoleLevel, fileLevel LogLevel) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minConsoleLevel = consoleLevel
	l.minFileLevel = fileLevel
}

// Enabled сообщает, попадёт ли сообщение уровня level хотя бы в один вывод
func (l *Logger) Enabled(level LogLevel) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.minConsoleLevel || (l.fileLogger != nil && level >= l.minFileLevel)
}

// Close закрывает файл логов
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

// Trace логирует сообщение уровня TRACE
func (l *Logger) Trace(format string, args ...interface{}) {
	l.log(TRACE, format, args...)
}

// Debug логирует сообщение уровня DEBUG
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info логирует сообщение уровня INFO
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn логирует сообщение уровня WARN
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error логирует сообщение уровня ERROR
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	toConsole := level >= l.minConsoleLevel
	toFile := l.fileLogger != nil && level >= l.minFileLevel
	if !toConsole && !toFile {
		return
	}

	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))
	if toFile {
		l.fileLogger.Println(message)
	}
	if toConsole {
		l.consoleLogger.Println(message)
	}
}

// Глобальный экземпляр логгера
var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// InitDefaultLogger инициализирует глобальный логгер приложения
func InitDefaultLogger(component string) error {
	logger, err := NewLogger(component)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	previous := defaultLogger
	defaultLogger = logger
	defaultMu.Unlock()

	if previous != nil {
		previous.Close()
	}
	return nil
}

// CloseDefaultLogger закрывает глобальный логгер
func CloseDefaultLogger() {
	defaultMu.Lock()
	logger := defaultLogger
	defaultLogger = nil
	defaultMu.Unlock()

	if logger != nil {
		logger.Close()
	}
}

// Default возвращает глобальный логгер (nil, если не инициализирован)
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Trace логирует сообщение уровня TRACE глобальным логгером
func Trace(format string, args ...interface{}) {
	Default().Trace(format, args...)
}

// Debug логирует сообщение уровня DEBUG глобальным логгером
func Debug(format string, args ...interface{}) {
	Default().Debug(format, args...)
}

// Info логирует сообщение уровня INFO глобальным логгером
func Info(format string, args ...interface{}) {
	Default().Info(format, args...)
}

// Warn логирует сообщение уровня WARN глобальным логгером
func Warn(format string, args ...interface{}) {
	Default().Warn(format, args...)
}

// Error логирует сообщение уровня ERROR глобальным логгером
func Error(format string, args ...interface{}) {
	Default().Error(format, args...)
}
