package receipt

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/y-maeda1116/FlowPrint/internal/model"
)

// ESC/POS command sequences. The renderer emits a complete, self-contained
// job: init, content, feed and cut.
var (
	cmdInit        = []byte{0x1b, 0x40}             // ESC @
	cmdAlignCenter = []byte{0x1b, 0x61, 0x01}       // ESC a 1
	cmdAlignLeft   = []byte{0x1b, 0x61, 0x00}       // ESC a 0
	cmdBoldOn      = []byte{0x1b, 0x45, 0x01}       // ESC E 1
	cmdBoldOff     = []byte{0x1b, 0x45, 0x00}       // ESC E 0
	cmdFeedCut     = []byte{0x1d, 0x56, 0x42, 0x03} // GS V B 3: feed then partial cut
)

const (
	DefaultWidth = 32
	DefaultTitle = "FLOWPRINT"

	checkboxDone = "[x]"
	checkboxOpen = "[ ]"
)

type Layout struct {
	Width int
	Title string
}

func (l Layout) withDefaults() Layout {
	if l.Width <= 0 {
		l.Width = DefaultWidth
	}
	if strings.TrimSpace(l.Title) == "" {
		l.Title = DefaultTitle
	}
	return l
}

// Render builds the raw receipt bytes for a task list: header, date line,
// one checkbox line per task, a total line, footer, feed and cut.
func Render(l Layout, tasks []model.Task, now time.Time) []byte {
	l = l.withDefaults()
	rule := strings.Repeat("-", l.Width)

	buf := &bytes.Buffer{}
	buf.Write(cmdInit)

	buf.Write(cmdAlignCenter)
	buf.Write(cmdBoldOn)
	writeLine(buf, clip(l.Title, l.Width))
	buf.Write(cmdBoldOff)
	writeLine(buf, now.Format("2006/01/02 15:04"))
	buf.Write(cmdAlignLeft)

	writeLine(buf, rule)
	done := 0
	for _, t := range tasks {
		box := checkboxOpen
		if t.Completed {
			box = checkboxDone
			done++
		}
		writeLine(buf, clip(box+" "+t.Title, l.Width))
	}
	writeLine(buf, rule)
	writeLine(buf, clip(fmt.Sprintf("TOTAL: %d tasks (%d done)", len(tasks), done), l.Width))

	buf.Write(cmdAlignCenter)
	writeLine(buf, "* * *")
	buf.Write(cmdAlignLeft)

	buf.WriteString("\n\n")
	buf.Write(cmdFeedCut)
	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte('\n')
}

// clip truncates to width runes so a long title never wraps mid-glyph.
func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "~"
}
