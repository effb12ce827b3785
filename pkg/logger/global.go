// pkg/logger/global.go
package logger

import (
	"os"
	"sync"
)

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// InitGlobal инициализирует глобальный логгер с записью в файл
func InitGlobal(logPath, logLevel string, debug bool) error {
	l, err := NewLogger(logPath, logLevel, debug)
	if err != nil {
		return err
	}
	SetGlobal(l)
	return nil
}

// InitConsole инициализирует глобальный логгер только для консоли
func InitConsole(logLevel string, debug bool) {
	SetGlobal(NewConsoleLogger(logLevel, debug))
}

// SetGlobal заменяет глобальный логгер
func SetGlobal(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

func GetLogger() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()

	if l == nil {
		// Fallback к консольному логгеру
		l = NewConsoleLogger(LevelInfo, false)
		SetGlobal(l)
	}
	return l
}

func current() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Глобальные методы для удобства
func Debug(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Debug(format, v...)
	}
}

func Info(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Info(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Warn(format, v...)
	}
}

func Error(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Error(format, v...)
	}
}

func Fatal(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Fatal(format, v...)
	}
	os.Exit(1)
}

// Close закрывает файл глобального логгера
func Close() {
	if l := current(); l != nil {
		l.Close()
	}
}
