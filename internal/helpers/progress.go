package helpers

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

func termWidth() int {
	width, _, err := term.GetSize(0)
	if !IsNil(err) {
		return 80
	}
	return Max(80, Min(120, width))
}

func unitForDuration(d time.Duration) time.Duration {
	if d < time.Microsecond {
		return time.Nanosecond
	}
	if d < time.Millisecond {
		return time.Microsecond
	}
	if d < time.Second {
		return time.Millisecond
	}
	if d < time.Minute {
		return time.Second
	}
	return time.Minute
}

// ProgressLine renders "label  42% =====    elapsed => expected @ rate/s"
// fitted to the terminal width.
func ProgressLine(label string, value int, total int, elapsed time.Duration, width int) string {
	value = Min(value, total)
	percent := 0.0
	if total > 0 {
		percent = float64(value) / float64(total)
	}

	perSecond := 0
	if elapsed > 0 {
		perSecond = int(float64(value) / elapsed.Seconds())
	}
	expectedFinish := time.Duration(0)
	if percent > 0 {
		expectedFinish = time.Duration(float64(elapsed) / percent)
	}
	unit := unitForDuration(elapsed)

	prefix := fmt.Sprintf("%s %3d%% ", label, int(percent*100))
	suffix := fmt.Sprintf(" %v => %v @ %v/s", elapsed.Round(unit), expectedFinish.Round(unit), humanize.Comma(int64(perSecond)))

	barLen := Max(width-len(prefix)-len(suffix), 10)
	done := Min(Max(int(float64(barLen)*percent), 0), barLen)

	return prefix + strings.Repeat("=", done) + strings.Repeat(" ", barLen-done) + suffix
}

type ProgressBar struct {
	Add   func(int)
	Close func()
}

// CreateProgressBar reports progress through setLine, throttled so that
// updates back off exponentially.
func CreateProgressBar(total int, label string, setLine func(string)) ProgressBar {
	value := int64(0)

	startTime := time.Now()
	nextUpdate := time.Millisecond * 200
	lock := sync.Mutex{}

	var update = func(force bool) {
		lock.Lock()
		defer lock.Unlock()

		elapsed := time.Since(startTime)
		if !force && elapsed < nextUpdate {
			return
		}
		nextUpdate *= 2
		setLine(ProgressLine(label, int(atomic.LoadInt64(&value)), total, elapsed, termWidth()))
	}

	return ProgressBar{
		Add: func(i int) {
			atomic.AddInt64(&value, int64(i))
			update(false)
		},
		Close: func() {
			update(true)
		},
	}
}
