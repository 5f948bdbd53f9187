// Package prompt renders matched records into the fixed context blocks and
// message lists sent to the text generator, and shapes generated replies.
package prompt

import (
	"strings"

	"github.com/xuanlung-gov/tthc-assistant/internal/catalog"
	"github.com/xuanlung-gov/tthc-assistant/internal/genai"
)

// Default sampling temperatures. The procedure path favours format fidelity.
const (
	DefaultProcedureTemperature = 0.2
	DefaultDocumentTemperature  = 0.3
)

// Config identifies the office the assistant speaks for.
type Config struct {
	Commune  string
	Province string
	Hotline  string
	NoData   string // empty uses the built-in message
	Busy     string // empty uses the built-in message
}

// Builder renders prompts for one office. It is immutable and safe for
// concurrent use.
type Builder struct {
	procedurePersona string
	documentPersona  string
	noData           string
	busy             string
}

// NewBuilder fills the office details into the fixed texts once.
func NewBuilder(cfg Config) *Builder {
	fill := strings.NewReplacer(
		"{commune}", cfg.Commune,
		"{province}", cfg.Province,
		"{hotline}", cfg.Hotline,
	)

	noData := cfg.NoData
	if noData == "" {
		noData = fill.Replace(defaultNoData)
	}
	busy := cfg.Busy
	if busy == "" {
		busy = fill.Replace(defaultBusy)
	}

	personas := strings.NewReplacer("{template}", answerTemplate, "{no_data}", noData)
	return &Builder{
		procedurePersona: personas.Replace(fill.Replace(procedurePersona)),
		documentPersona:  personas.Replace(fill.Replace(documentPersona)),
		noData:           noData,
		busy:             busy,
	}
}

// NoData is the reply used when no record or no generated text is available.
func (b *Builder) NoData() string { return b.noData }

// Busy is the reply used when the generator fails.
func (b *Builder) Busy() string { return b.busy }

// ProcedurePersona is the system instruction for the procedure path.
func (b *Builder) ProcedurePersona() string { return b.procedurePersona }

// DocumentPersona is the system instruction for the document path.
func (b *Builder) DocumentPersona() string { return b.documentPersona }

// ProcedureMessages returns persona, context and question, in that order.
// agency1 and agency2 must already be normalized.
func (b *Builder) ProcedureMessages(p catalog.Procedure, agency1, agency2, question string) []genai.Message {
	return []genai.Message{
		genai.SystemMessage(b.procedurePersona),
		genai.SystemMessage(procedureContextPreamble + ProcedureContext(p, agency1, agency2)),
		genai.UserMessage(question),
	}
}

// DocumentMessages returns persona, context and question, in that order.
func (b *Builder) DocumentMessages(d catalog.Document, question string) []genai.Message {
	return []genai.Message{
		genai.SystemMessage(b.documentPersona),
		genai.SystemMessage(DocumentContext(d)),
		genai.UserMessage(question),
	}
}

// Finalize trims generated text and substitutes NoData when nothing is left.
func (b *Builder) Finalize(generated string) string {
	if text := strings.TrimSpace(generated); text != "" {
		return text
	}
	return b.noData
}
