package helpers

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLiveLogger(t *testing.T) {
	out := &bytes.Buffer{}
	l := NewLiveLogger(out)
	l.SetFooter("progress 10%", 0)
	l.Println("line 1")
	l.FooterLogger(0).Print("progress 50%")

	assert.Equal(t, "progress 50%", l.FooterString())
	assert.Contains(t, out.String(), "line 1\nprogress 10%\n")
	assert.Contains(t, out.String(), "progress 50%")
}

func TestWrapLineIgnoresAnsi(t *testing.T) {
	colored := "\033[38;5;244mabc\x1b[0m def"
	assert.Equal(t, 7, runeCountIgnoringAnsi(colored))
	assert.Equal(t, "aaa bbb\nccc", wrapLine("aaa bbb ccc", 8))
}

func TestProgressLine(t *testing.T) {
	line := ProgressLine("perft", 50, 100, 2*time.Second, 80)
	assert.Contains(t, line, "perft  50%")
	assert.Contains(t, line, "@ 25/s")
	assert.Equal(t, 80, len(line))
}
