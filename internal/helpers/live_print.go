package helpers

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/acarl005/stripansi"
)

// LiveLogger prints log lines above a footer that is redrawn in place, e.g.
// a progress line under a stream of results.
type LiveLogger struct {
	out     io.Writer
	footers []string

	lock   sync.Mutex
	noCopy NoCopy
}

var _ Logger = &LiveLogger{}

func NewLiveLogger(out io.Writer) *LiveLogger {
	return &LiveLogger{out: out}
}

func (l *LiveLogger) FooterString() string {
	return strings.Join(l.footers, "\n")
}

func (l *LiveLogger) Println(v ...interface{}) {
	l.Print(fmt.Sprintln(v...))
}

func (l *LiveLogger) Printf(format string, v ...interface{}) {
	l.Print(fmt.Sprintf(format, v...))
}

func (l *LiveLogger) Print(xs ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()

	footer := l.FooterString()
	l.printLive(Some(fmt.Sprint(xs...)), footer, footer)
}

func (l *LiveLogger) SetFooter(s string, index int) {
	l.lock.Lock()
	defer l.lock.Unlock()

	previous := l.FooterString()
	for len(l.footers) <= index {
		l.footers = append(l.footers, "")
	}
	l.footers[index] = strings.TrimSpace(s)

	l.printLive(Empty[string](), previous, l.FooterString())
}

// FooterLogger returns a Logger that replaces footer line index.
func (l *LiveLogger) FooterLogger(index int) Logger {
	return FuncLogger(func(s string) {
		l.SetFooter(s, index)
	})
}

func runeCountIgnoringAnsi(s string) int {
	return utf8.RuneCountInString(stripansi.Strip(s))
}

func wrapLine(s string, width int) string {
	if runeCountIgnoringAnsi(s) < width {
		return s
	}

	lines := []string{}
	line := []string{}
	for _, word := range strings.Split(s, " ") {
		joined := strings.Join(line, " ")
		if runeCountIgnoringAnsi(joined)+runeCountIgnoringAnsi(word)+1 > width && len(line) != 0 {
			lines = append(lines, joined)
			line = []string{word}
		} else {
			line = append(line, word)
		}
	}
	lines = append(lines, strings.Join(line, " "))
	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	return strings.Join(MapSlice(strings.Split(s, "\n"), func(line string) string {
		return wrapLine(line, width)
	}), "\n")
}

func linesOnScreen(s string, width int) int {
	if s == "" {
		return 0
	}
	return len(strings.Split(wrapText(s, width), "\n"))
}

// printLive moves the cursor above the previous footer, clears to the end
// of the screen, prints output and then redraws the footer.
func (l *LiveLogger) printLive(output Optional[string], previousFooter string, footer string) {
	width := termWidth()
	for i := 0; i < linesOnScreen(previousFooter, width); i++ {
		fmt.Fprint(l.out, "\033[A")
	}
	fmt.Fprint(l.out, "\033[J")

	if output.HasValue() {
		fmt.Fprint(l.out, output.Value())
	}
	if footer != "" {
		fmt.Fprintln(l.out, wrapText(footer, width))
	}
}
