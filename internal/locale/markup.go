package locale

import "strings"

// Span is a run of text with uniform styling.
//
// Story strings mark emphasis with double braces. "{{ls}}" highlights a
// command. "{{yb:Edith:}}" carries a style code before the colon: a colour
// letter (r, g, y, b, w, c, m) optionally followed by b for bold or n for
// normal weight.
type Span struct {
	Text      string
	Highlight bool
	Color     byte
	Bold      bool
}

// Parse splits s into spans. Unterminated markup is kept as plain text.
func Parse(s string) []Span {
	var spans []Span
	for s != "" {
		open := strings.Index(s, "{{")
		if open < 0 {
			spans = appendPlain(spans, s)
			break
		}
		end := strings.Index(s[open+2:], "}}")
		if end < 0 {
			spans = appendPlain(spans, s)
			break
		}
		spans = appendPlain(spans, s[:open])
		spans = append(spans, styled(s[open+2:open+2+end]))
		s = s[open+2+end+2:]
	}
	return spans
}

// Plain returns s with markup removed.
func Plain(s string) string {
	var b strings.Builder
	for _, sp := range Parse(s) {
		b.WriteString(sp.Text)
	}
	return b.String()
}

func appendPlain(spans []Span, text string) []Span {
	if text == "" {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1] == (Span{Text: spans[n-1].Text}) {
		spans[n-1].Text += text
		return spans
	}
	return append(spans, Span{Text: text})
}

func styled(inner string) Span {
	code, text, ok := strings.Cut(inner, ":")
	if !ok || !validCode(code) {
		return Span{Text: inner, Highlight: true}
	}
	sp := Span{Text: text, Highlight: true, Color: code[0]}
	if len(code) == 2 {
		sp.Bold = code[1] == 'b'
	}
	return sp
}

func validCode(code string) bool {
	if len(code) < 1 || len(code) > 2 {
		return false
	}
	if !strings.ContainsRune("rgybwcm", rune(code[0])) {
		return false
	}
	return len(code) == 1 || code[1] == 'b' || code[1] == 'n'
}
