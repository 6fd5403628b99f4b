package ops

// Telegram parse modes understood by the notifier.
const (
	ModePlain    = ""
	ModeMarkdown = "Markdown"
)

// Formatter is an optional interface ops may implement to declare the
// markup their output uses. Ops that don't implement it reply in plain text.
type Formatter interface {
	ParseMode() string
}

// ParseModeOf returns the parse mode of an op's output.
func ParseModeOf(op Op) string {
	if f, ok := op.(Formatter); ok {
		return f.ParseMode()
	}
	return ModePlain
}
