package ioutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/armforge/arm2core/ioutil"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.s")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}
	return path
}

func TestLoadLinesStripsLineEndings(t *testing.T) {
	path := writeTemp(t, "mov r0, #1\r\nadd r1, r0, #2\n")
	lines, err := ioutil.LoadLines(path, 100, 512)
	if err != nil {
		t.Fatalf("LoadLines: %v", err)
	}
	want := []string{"mov r0, #1", "add r1, r0, #2"}
	if len(lines) != len(want) {
		t.Fatalf("LoadLines returned %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestLoadLinesRejectsTooManyLines(t *testing.T) {
	path := writeTemp(t, "mov r0, #1\nmov r0, #2\nmov r0, #3\n")
	if _, err := ioutil.LoadLines(path, 2, 512); err == nil {
		t.Error("LoadLines should reject a file exceeding maxLines")
	}
}

func TestLoadLinesRejectsTooLongLine(t *testing.T) {
	path := writeTemp(t, "mov r0, #123456789\n")
	if _, err := ioutil.LoadLines(path, 100, 8); err == nil {
		t.Error("LoadLines should reject a line exceeding maxLineLength")
	}
}

func TestLoadLinesMissingFile(t *testing.T) {
	if _, err := ioutil.LoadLines(filepath.Join(t.TempDir(), "nope.s"), 100, 512); err == nil {
		t.Error("LoadLines should error on a missing file")
	}
}

func TestSaveImageThenLoadImageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x00, 0x00, 0x00}

	if err := ioutil.SaveImage(path, data); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	got, err := ioutil.LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if len(got) != len(data) {
		t.Fatalf("LoadImage returned %d bytes, want %d", len(got), len(data))
	}
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("byte %d = %#x, want %#x", i, got[i], data[i])
		}
	}
}
