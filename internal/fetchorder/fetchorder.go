// Package fetchorder parses BagIt retrieval orders (fetch.txt files)
// into the ordered list of items a package retrieval works through.
package fetchorder

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SizeUnknown marks an item whose retrieval order line carried no
// usable size: the older two-token syntax, or the three-token syntax
// with "-" (or anything else non-numeric) in the size column.
const SizeUnknown int64 = -1

// Item is one line of the retrieval order: where to fetch from and
// what to call the result inside the package. Immutable once parsed.
type Item struct {
	SourceURL       string
	ExpectedSize    int64
	DestinationName string
}

// MalformedLineError reports a retrieval order line whose token count
// is neither two (url, filename) nor three (url, size, filename).
type MalformedLineError struct {
	Line   int    // 1-based line number within the retrieval order
	Text   string // the offending line, trimmed
	Reason string // human-readable explanation
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed retrieval order line %d: %s (%q)", e.Line, e.Reason, e.Text)
}

// Parse reads a retrieval order and returns its items in file order.
// Blank lines are skipped. Any malformed line aborts the parse.
func Parse(r io.Reader) ([]Item, error) {
	var items []Item

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		item, err := parseLine(line, lineNo)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read retrieval order: %w", err)
	}

	return items, nil
}

// ParseFile opens and parses the retrieval order at path.
func ParseFile(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open retrieval order: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

func parseLine(line string, lineNo int) (Item, error) {
	tokens := strings.Fields(line)

	switch len(tokens) {
	case 2:
		// Older fetch file syntax: url and filename only.
		return Item{
			SourceURL:       tokens[0],
			ExpectedSize:    SizeUnknown,
			DestinationName: tokens[1],
		}, nil
	case 3:
		// The size column is informational only; a fetch file may carry
		// "-" for an unknown length. Best-effort parse, never fatal.
		size, err := strconv.ParseInt(tokens[1], 10, 64)
		if err != nil || size < 0 {
			size = SizeUnknown
		}

		return Item{
			SourceURL:       tokens[0],
			ExpectedSize:    size,
			DestinationName: tokens[2],
		}, nil
	default:
		return Item{}, &MalformedLineError{
			Line:   lineNo,
			Text:   line,
			Reason: fmt.Sprintf("expected 2 or 3 tokens, got %d", len(tokens)),
		}
	}
}
