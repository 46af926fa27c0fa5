package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Printer is the output handler for CLI commands. It renders semantic text
// through an optional StyleProvider and serializes concurrent writes.
type Printer struct {
	styleProvider StyleProvider
	writer        io.Writer
	mode          Mode
	forcePlain    bool
	testMode      bool

	mu sync.Mutex
}

// NewPrinter creates a Printer with the given options. By default it writes
// to os.Stdout in automatic mode.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
		mode:   ModeAuto,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Print outputs text without semantic styling.
func (p *Printer) Print(text string) {
	p.output(SemanticPlain, text, false)
}

// Printf outputs formatted text without semantic styling.
func (p *Printer) Printf(format string, args ...interface{}) {
	p.output(SemanticPlain, fmt.Sprintf(format, args...), false)
}

// Println outputs text followed by a newline.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text, true)
}

// Info outputs an informational line.
func (p *Printer) Info(text string) {
	p.output(SemanticInfo, text, true)
}

// Success outputs a success line, typically green.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text, true)
}

// Warning outputs a warning line, typically yellow.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text, true)
}

// Error outputs an error line, typically red.
func (p *Printer) Error(text string) {
	p.output(SemanticError, text, true)
}

// Title outputs a heading line styled by the active theme.
func (p *Printer) Title(text string) {
	p.output(SemanticTitle, text, true)
}

// Accent outputs emphasized inline text styled by the active theme.
func (p *Printer) Accent(text string) {
	p.output(SemanticAccent, text, false)
}

// Muted outputs de-emphasized inline text styled by the active theme.
func (p *Printer) Muted(text string) {
	p.output(SemanticMuted, text, false)
}

// Badge outputs inline label text styled by the active theme.
func (p *Printer) Badge(text string) {
	p.output(SemanticBadge, text, false)
}

func (p *Printer) output(semantic string, text string, addNewline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var finalText string
	switch p.mode {
	case ModeJSON:
		finalText = p.renderJSON(semantic, text)
	case ModePlain, ModeAuto:
		finalText = p.renderText(semantic, text, addNewline)
	case ModeStyled:
		finalText = p.renderStyled(semantic, text, addNewline)
	}

	_, _ = fmt.Fprint(p.writer, finalText)
}

func (p *Printer) renderText(semantic string, text string, addNewline bool) string {
	var result string

	if !p.forcePlain && p.styleProvider != nil && p.styleProvider.IsAvailable() {
		result = p.styleProvider.GetStyle(semantic).Render(text)
	} else {
		result = NewPlainStyleProvider().GetStyle(semantic).Render(text)
	}

	if addNewline && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

func (p *Printer) renderStyled(semantic string, text string, addNewline bool) string {
	if p.styleProvider != nil && p.styleProvider.IsAvailable() {
		result := p.styleProvider.GetStyle(semantic).Render(text)
		if addNewline && !strings.HasSuffix(result, "\n") {
			result += "\n"
		}
		return result
	}
	return p.renderText(semantic, text, addNewline)
}

func (p *Printer) renderJSON(semantic string, text string) string {
	frame := map[string]interface{}{
		"type":    semantic,
		"message": text,
	}
	jsonBytes, err := json.Marshal(frame)
	if err != nil {
		return text + "\n"
	}
	return string(jsonBytes) + "\n"
}

// SetWriter redirects output, typically for tests.
func (p *Printer) SetWriter(writer io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = writer
}

// IsStylable reports whether the printer can apply styles.
func (p *Printer) IsStylable() bool {
	return !p.forcePlain && p.styleProvider != nil && p.styleProvider.IsAvailable()
}
