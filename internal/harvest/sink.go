package harvest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/courtside-ml/takeforge/pkg/corpus"
)

// CorpusSink appends raw items to a newline-delimited corpus file. Writes are
// buffered; Flush is the durability point the crawler hits before every
// checkpoint save.
type CorpusSink struct {
	path string
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// OpenCorpusSink opens (or creates) an append-only corpus file
func OpenCorpusSink(path string) (*CorpusSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create corpus directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus %s: %w", path, err)
	}
	buf := bufio.NewWriter(file)
	return &CorpusSink{
		path: path,
		file: file,
		buf:  buf,
		enc:  json.NewEncoder(buf),
	}, nil
}

// Write appends one raw item as a JSON line
func (s *CorpusSink) Write(item corpus.RawItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if err := s.enc.Encode(item); err != nil {
		return fmt.Errorf("failed to append to corpus %s: %w", s.path, err)
	}
	return nil
}

// Flush pushes buffered records down to the OS and syncs the file
func (s *CorpusSink) Flush() error {
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush corpus %s: %w", s.path, err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync corpus %s: %w", s.path, err)
	}
	return nil
}

// Close flushes and closes the underlying file
func (s *CorpusSink) Close() error {
	if err := s.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
