package diagnostics

import (
	"strings"
	"testing"

	"phase/source"
)

func TestRenderIncludesBannerLocationAndHelp(t *testing.T) {
	r := New(&strings.Builder{})
	r.readLine = func(file string, line int) (string, bool) {
		return `  let x: int = "hi"`, true
	}

	d := TypeMismatch(source.New("main.phase", 2, 15, 18), "local declaration", "int", "str")
	out := r.Render(d)

	if !strings.Contains(out, "Fatal Error [108]") {
		t.Errorf("Render() missing banner code, got: %s", out)
	}
	if !strings.Contains(out, "main.phase:2:15-18") {
		t.Errorf("Render() missing location line, got: %s", out)
	}
	if !strings.Contains(out, "Help:") {
		t.Errorf("Render() missing help line, got: %s", out)
	}
	if !strings.Contains(out, "^^^^") {
		t.Errorf("Render() missing caret span, got: %s", out)
	}
}

func TestRenderSuggestionAppliesReplacement(t *testing.T) {
	r := New(&strings.Builder{})
	r.readLine = func(file string, line int) (string, bool) {
		return `  let x: int = "hi"`, true
	}

	d := TypeMismatch(source.New("main.phase", 1, 1, 1), "local declaration", "int", "str")
	out := r.Render(d)

	if !strings.Contains(out, "- "+`  let x: int = "hi"`) {
		t.Errorf("Render() missing original line in suggestion, got: %s", out)
	}
	if !strings.Contains(out, "+ "+`  let x: str = "hi"`) {
		t.Errorf("Render() missing rewritten line in suggestion, got: %s", out)
	}
}

func TestRenderWithoutPositionSkipsLocationLine(t *testing.T) {
	r := New(&strings.Builder{})
	out := r.Render(NoEntry())

	if strings.Contains(out, "-->") {
		t.Errorf("Render() should not print a location line for an unanchored diagnostic, got: %s", out)
	}
}

func TestFatalWritesAndExits(t *testing.T) {
	var buf strings.Builder
	r := New(&buf)
	exitCode := -1
	r.Exit = func(code int) { exitCode = code }

	r.Fatal(DivisionByZero(source.New("main.phase", 3, 8, 12)))

	if exitCode != 1 {
		t.Errorf("Exit code = %d, want 1", exitCode)
	}
	if !strings.Contains(buf.String(), "division by zero") {
		t.Errorf("Fatal() did not write the rendered diagnostic, got: %s", buf.String())
	}
}

func TestChooseBarsFallsBackOnDumbTerminal(t *testing.T) {
	b := chooseBars("dumb", "", "")
	if b != asciiBars {
		t.Errorf("chooseBars(dumb) = %+v, want ASCII fallback", b)
	}
}

func TestChooseBarsDefaultsToUnicode(t *testing.T) {
	b := chooseBars("xterm-256color", "en_US.UTF-8", "")
	if b != unicodeBars {
		t.Errorf("chooseBars() = %+v, want box-drawing default", b)
	}
}

func TestChooseBarsFallsBackOnNonUTF8Locale(t *testing.T) {
	b := chooseBars("xterm", "C", "")
	if b != asciiBars {
		t.Errorf("chooseBars() = %+v, want ASCII fallback for non-UTF8 locale", b)
	}
}
