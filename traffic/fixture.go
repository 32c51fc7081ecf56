package traffic

import (
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and parses a traffic fixture file previously produced by
// WriteRecorded or WriteUnmocked. The returned Map is typically handed to a
// mock registry's Import to replay a recorded session.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// WriteRecorded saves the recorded traffic map to path as a fixture file.
func (r *Recorder) WriteRecorded(path string) error {
	s, err := r.DumpRecorded()
	if err != nil {
		return err
	}
	return writeFixture(path, s)
}

// WriteUnmocked saves the unmocked traffic map to path as a fixture file.
func (r *Recorder) WriteUnmocked(path string) error {
	s, err := r.DumpUnmocked()
	if err != nil {
		return err
	}
	return writeFixture(path, s)
}

// writeFixture writes to a temporary file and renames it into place so a
// crash mid-write never leaves a truncated fixture.
func writeFixture(path, contents string) error {
	dir, filename := filepath.Split(path)
	if dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	f, err := os.CreateTemp(dir, filename)
	if err != nil {
		return err
	}
	_, err = f.WriteString(contents)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(f.Name(), path)
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("traffic: writing fixture %s: %w", path, err)
	}
	return nil
}
