package book

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// Decode reads a JSON book record. Records saved before generation
// finished may lack an identifier or publication year; both are filled in
// so downstream metadata is never empty.
func Decode(r io.Reader) (*Book, error) {
	var b Book
	dec := json.NewDecoder(r)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode book record: %w", err)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.PublishedYear == 0 {
		b.PublishedYear = time.Now().Year()
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Load reads and validates a JSON book record from a file.
func Load(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open book record: %w", err)
	}
	defer f.Close()

	b, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}
