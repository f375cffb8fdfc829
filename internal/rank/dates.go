package rank

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ParseDates reads a list of calendar days, one YYYY-MM-DD per line.
// Blank lines and lines starting with # are ignored.
func ParseDates(r io.Reader) ([]time.Time, error) {
	var dates []time.Time

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		day, err := time.Parse("2006-01-02", text)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q: %w", line, text, err)
		}
		dates = append(dates, day)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return dates, nil
}

// LoadDateFile reads excluded dates from a file.
func LoadDateFile(path string) ([]time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dates, err := ParseDates(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dates, nil
}
