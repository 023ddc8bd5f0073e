package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// bars is the set of glyphs used to draw a diagnostic's left margin: the
// banner line, the location line, and a plain continuation line.
type bars struct {
	top    string
	branch string
	pipe   string
}

var unicodeBars = bars{top: "┏", branch: "┣", pipe: "┃"}
var asciiBars = bars{top: ">", branch: ">", pipe: "|"}

// chooseBars decides between the box-drawing glyph set and an ASCII
// fallback based on terminal and locale hints. The box-drawing set is the
// default; only a locale that conclusively isn't UTF-8, or a "dumb"
// terminal, falls back to ASCII.
func chooseBars(term, lcCtype, lang string) bars {
	if term == "dumb" {
		return asciiBars
	}
	locale := lcCtype
	if locale == "" {
		locale = lang
	}
	if locale != "" && !strings.Contains(strings.ToUpper(locale), "UTF-8") && !strings.Contains(strings.ToUpper(locale), "UTF8") {
		return asciiBars
	}
	return unicodeBars
}

// Reporter renders Diagnostics and, at the CLI boundary, terminates the
// process. Unlike a single package-level pointer, a Reporter is an explicit
// handle built by the CLI commands (the lexer, parser, emitter, and VM only
// return Diagnostics as errors), so tests can substitute a buffer and a
// no-op exit function instead of relying on hidden global state.
type Reporter struct {
	Writer      io.Writer
	Exit        func(code int)
	currentFile string
	readLine    func(file string, line int) (string, bool)
}

// New creates a Reporter that writes to w and calls os.Exit to terminate
// the process, reading source snippets straight from disk.
func New(w io.Writer) *Reporter {
	return &Reporter{
		Writer:   w,
		Exit:     os.Exit,
		readLine: readLineFromDisk,
	}
}

// SetSource records the path of the file currently being processed. A
// Diagnostic whose Location.File is empty is resolved against this path
// when rendered.
func (r *Reporter) SetSource(file string) {
	r.currentFile = file
}

func readLineFromDisk(file string, line int) (string, bool) {
	if file == "" || line <= 0 {
		return "", false
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", false
	}
	lines := strings.Split(string(data), "\n")
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// Render produces the full banner text for a Diagnostic without writing it
// anywhere or terminating the process, so tests can assert on its shape.
func (r *Reporter) Render(d Diagnostic) string {
	b := chooseBars(os.Getenv("TERM"), os.Getenv("LC_CTYPE"), os.Getenv("LANG"))

	loc := d.Location
	if loc.File == "" {
		loc.File = r.currentFile
	}

	var out strings.Builder
	fmt.Fprintf(&out, "%s Fatal Error [%d]: %s\n", b.top, d.Kind.Code(), d.Message)

	if loc.HasPosition() {
		fmt.Fprintf(&out, "%s --> %s:%d:%d-%d\n", b.branch, loc.File, loc.Line, loc.ColStart, loc.ColEnd)
		if line, ok := r.readLine(loc.File, loc.Line); ok {
			fmt.Fprintf(&out, "%s %s\n", b.pipe, line)
			out.WriteString(b.pipe + " " + caretSpan(line, loc.ColStart, loc.ColEnd) + "\n")
		}
	}

	fmt.Fprintf(&out, "%s Help: %s\n", b.branch, d.Help)

	if d.Suggestion != nil {
		if line, ok := r.readLine(loc.File, loc.Line); ok {
			if rewritten, applies := d.Suggestion(line); applies {
				fmt.Fprintf(&out, "\x1b[31m- %s\x1b[0m\n", line)
				fmt.Fprintf(&out, "\x1b[32m+ %s\x1b[0m\n", rewritten)
			}
		}
	}

	return out.String()
}

// caretSpan renders a run of '^' characters aligned under [colStart,
// colEnd] of line, padded with spaces so it lines up beneath the snippet
// printed directly above it.
func caretSpan(line string, colStart, colEnd int) string {
	if colStart < 1 {
		colStart = 1
	}
	if colEnd < colStart {
		colEnd = colStart
	}
	var b strings.Builder
	for i := 1; i < colStart; i++ {
		b.WriteByte(' ')
	}
	for i := colStart; i <= colEnd; i++ {
		b.WriteByte('^')
	}
	return b.String()
}

// Fatal renders d to the Reporter's Writer and then calls Exit(1). With the
// default Exit (os.Exit) control never returns to the caller; a Reporter
// whose Exit has been replaced, as the CLI commands and tests do, returns
// normally after writing.
func (r *Reporter) Fatal(d Diagnostic) {
	io.WriteString(r.Writer, r.Render(d))
	r.Exit(1)
}

// FormatCode is a small helper used by callers that want the bracketed
// "[108]" code fragment without the rest of the banner, e.g. in log lines.
func FormatCode(k Kind) string {
	return "[" + strconv.Itoa(k.Code()) + "]"
}
