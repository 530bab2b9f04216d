package main

import (
	"bufio"
	"io"
	"os"
	"unicode/utf8"
)

// Longest line accepted from a dump. Session tables on big controllers
// have wide rows but nothing close to this.
const maxLineSize = 1024 * 1024

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return scanLines(file)
}

// scanLines splits r into lines without their terminators
func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// firstInvalidUTF8 returns the 1-based number of the first line that is
// not valid UTF-8, or 0 if every line is
func firstInvalidUTF8(lines []string) int {
	for i, line := range lines {
		if !utf8.ValidString(line) {
			return i + 1
		}
	}
	return 0
}
