package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// ReadRawItems loads a newline-delimited raw corpus file. Blank lines are
// skipped; a malformed line fails the whole read since the corpus is written
// by the harvester and should never contain garbage.
func ReadRawItems(path string) ([]RawItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw corpus %s: %w", path, err)
	}
	defer f.Close()

	var items []RawItem
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var item RawItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("malformed record at %s:%d: %w", path, line, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read raw corpus %s: %w", path, err)
	}
	return items, nil
}

// ReadExamples loads a newline-delimited file of conversation examples
func ReadExamples(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open examples %s: %w", path, err)
	}
	defer f.Close()

	var examples []Example
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ex Example
		if err := json.Unmarshal(raw, &ex); err != nil {
			return nil, fmt.Errorf("malformed example at %s:%d: %w", path, line, err)
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read examples %s: %w", path, err)
	}
	return examples, nil
}

// WriteExamples writes conversation examples as one JSON object per line,
// replacing any existing file
func WriteExamples(path string, examples []Example) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, ex := range examples {
		if err := enc.Encode(ex); err != nil {
			return fmt.Errorf("failed to encode example: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
