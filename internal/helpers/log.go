package helpers

import (
	"fmt"
	"log"
)

type Logger interface {
	Println(v ...any)
	Printf(format string, v ...any)
	Print(v ...any)
}

type _defaultLogger struct {
}

func (l *_defaultLogger) Println(v ...any) {
	log.Println(v...)
}
func (l *_defaultLogger) Printf(format string, v ...any) {
	log.Printf(format, v...)
}
func (l *_defaultLogger) Print(v ...any) {
	log.Print(v...)
}

var DefaultLogger Logger = &_defaultLogger{}

type _silentLogger struct {
}

func (l *_silentLogger) Println(v ...any)               {}
func (l *_silentLogger) Printf(format string, v ...any) {}
func (l *_silentLogger) Print(v ...any)                 {}

var SilentLogger Logger = &_silentLogger{}

// FuncLogger forwards each formatted line to f.
type FuncLogger func(s string)

func (f FuncLogger) Println(v ...any) {
	f(fmt.Sprintln(v...))
}
func (f FuncLogger) Printf(format string, v ...any) {
	f(fmt.Sprintf(format, v...))
}
func (f FuncLogger) Print(v ...any) {
	f(fmt.Sprint(v...))
}
