package venice_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/venice-lang/venice"
)

func TestReadAllFile(t *testing.T) {
	rt := venice.New()
	rt.SetReadChunkSize(4)

	path := rt.NewString("testdata/alphabet.txt")
	f := rt.OpenFile(path)
	contents := rt.ReadAll(f)
	rt.CloseFile(f)

	if contents.String() != "abcdefghijklmnopqrstuvwxyz\n" {
		t.Errorf("expected the alphabet, got %q", contents.String())
	}
	if contents.Length() != 27 {
		t.Errorf("expected length 27, got %d", contents.Length())
	}

	contents.Destroy()
	path.Destroy()
	if live := rt.Stats().Live; live != 0 {
		t.Errorf("expected 0 live bytes, got %d", live)
	}
}

func TestReadAllChunkBoundary(t *testing.T) {
	rt := venice.New()
	rt.SetReadChunkSize(4)

	// Content that is an exact multiple of the chunk size exercises the
	// final empty read.
	s := rt.ReadAll(strings.NewReader("abcdefgh"))
	if s.String() != "abcdefgh" {
		t.Errorf("expected 'abcdefgh', got %q", s.String())
	}
	s.Destroy()

	empty := rt.ReadAll(strings.NewReader(""))
	if empty.Length() != 0 {
		t.Errorf("expected empty contents, got %q", empty.String())
	}
	empty.Destroy()
}

func TestOpenFileMissing(t *testing.T) {
	rt := venice.New()

	path := rt.NewString("testdata/no-such-file")
	defer path.Destroy()

	rerr := catchRuntimeError(t, func() { rt.OpenFile(path) })
	if rerr.Kind != venice.IOFailure {
		t.Errorf("expected IOFailure, got %v", rerr.Kind)
	}
	if rerr.Message != "failed to open file" {
		t.Errorf("expected 'failed to open file', got %q", rerr.Message)
	}
}

func TestInput(t *testing.T) {
	rt := venice.New()

	var out bytes.Buffer
	rt.SetOutput(&out)
	rt.SetInput(strings.NewReader("Venice\n"))

	prompt := rt.NewString("name: ")
	line := rt.Input(prompt)

	if out.String() != "name: " {
		t.Errorf("expected the prompt to be written, got %q", out.String())
	}
	if line.String() != "Venice" {
		t.Errorf("expected 'Venice' with the newline stripped, got %q", line.String())
	}

	line.Destroy()
	prompt.Destroy()
}

func TestInputWithoutTrailingNewline(t *testing.T) {
	rt := venice.New()
	rt.SetOutput(&bytes.Buffer{})
	rt.SetInput(strings.NewReader("Venice"))

	prompt := rt.NewString("? ")
	defer prompt.Destroy()

	line := rt.Input(prompt)
	if line.String() != "Venice" {
		t.Errorf("expected 'Venice', got %q", line.String())
	}
	line.Destroy()
}

func TestInputAtEOF(t *testing.T) {
	rt := venice.New()
	rt.SetOutput(&bytes.Buffer{})
	rt.SetInput(strings.NewReader(""))

	prompt := rt.NewString("? ")
	defer prompt.Destroy()

	rerr := catchRuntimeError(t, func() { rt.Input(prompt) })
	if rerr.Kind != venice.IOFailure {
		t.Errorf("expected IOFailure, got %v", rerr.Kind)
	}
	if rerr.Message != "failed to read input" {
		t.Errorf("expected 'failed to read input', got %q", rerr.Message)
	}
}

func TestPrintPrimitives(t *testing.T) {
	rt := venice.New()

	var out bytes.Buffer
	rt.SetOutput(&out)

	s := rt.NewString("hi")
	rt.Println(s)
	rt.Print(s)
	rt.PrintInt(1234567)
	rt.PrintInt(-1)
	s.Destroy()

	want := "hi\nhi1234567\n-1\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}
