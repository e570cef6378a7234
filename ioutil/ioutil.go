// Package ioutil implements the two external I/O collaborators spec.md
// §1/§6 name as out of scope for the core: loading a source file into
// an array of lines, and reading/writing a flat binary image.
package ioutil

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadLines reads path and splits it into lines with trailing CR/LF
// stripped, enforcing maxLines and maxLineLength the way the source's
// read_char_file enforces MAX_LINES/LINE_SIZE.
func LoadLines(path string, maxLines, maxLineLength int) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- path is a user-supplied CLI argument
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, maxLineLength+1), maxLineLength+1)
	for scanner.Scan() {
		if len(lines) >= maxLines {
			return nil, fmt.Errorf("source file exceeds %d lines", maxLines)
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if len(line) > maxLineLength {
			return nil, fmt.Errorf("line %d exceeds %d characters", len(lines)+1, maxLineLength)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	return lines, nil
}

// LoadImage reads a flat byte buffer from path (the emulator's binary
// image input).
func LoadImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is a user-supplied CLI argument
	if err != nil {
		return nil, fmt.Errorf("failed to read binary image: %w", err)
	}
	return data, nil
}

// SaveImage writes a flat byte buffer to path (the assembler's binary
// image output).
func SaveImage(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil { // #nosec G306 -- assembler output, not sensitive
		return fmt.Errorf("failed to write binary image: %w", err)
	}
	return nil
}
