package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/fostercare-aficionado/chat/internal/chatview"
	"github.com/fostercare-aficionado/chat/internal/models"
)

// printer writes assistant turns to a terminal as they change. A growing reply is written as
// deltas, so the text appears as it streams in.
type printer struct {
	w    *bufio.Writer
	name func(a ...interface{}) string

	printed  map[string]int
	finished map[string]bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:        bufio.NewWriter(w),
		name:     color.New(color.FgCyan, color.Bold).SprintFunc(),
		printed:  make(map[string]int),
		finished: make(map[string]bool),
	}
}

func (p *printer) observe(s chatview.Snapshot) {
	defer p.w.Flush()

	for _, msg := range s.Messages {
		if msg.Role != models.RoleAssistant || p.finished[msg.ID] {
			continue
		}

		n, seen := p.printed[msg.ID]
		if !seen {
			fmt.Fprintf(p.w, "%s ", p.name("Assistant ["+msg.Clock()+"]:"))
		}
		if len(msg.Content) > n {
			_, _ = p.w.WriteString(msg.Content[n:])
			n = len(msg.Content)
		}
		p.printed[msg.ID] = n

		if !msg.Streaming() {
			_, _ = p.w.WriteString("\n")
			p.finished[msg.ID] = true
		}
	}
}
