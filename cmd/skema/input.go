package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	skema "github.com/reoring/skema"
)

// eachDoc decodes every named file, or in when no files are given, and
// calls fn with the instance. "-" names in.
func eachDoc(in io.Reader, files []string, fn func(name string, data []byte, doc any) error) error {
	if len(files) == 0 {
		files = []string{"-"}
	}
	for _, file := range files {
		data, err := readFile(in, file)
		if err != nil {
			return err
		}
		doc, err := decodeInstance(file, data)
		if err != nil {
			return fmt.Errorf("error decoding %s: %w", file, err)
		}
		if err := fn(file, data, doc); err != nil {
			return err
		}
	}
	return nil
}

func readFile(in io.Reader, file string) ([]byte, error) {
	if file == "-" {
		d, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("error reading stdin: %w", err)
		}
		return d, nil
	}
	d, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", file, err)
	}
	return d, nil
}

// decodeInstance picks YAML for .yaml/.yml files and JSON otherwise.
// Duplicate keys are rejected in both.
func decodeInstance(file string, data []byte) (any, error) {
	if isYAML(file) {
		return skema.DecodeYAML(data)
	}
	return skema.DecodeJSONReader(bytes.NewReader(data), skema.DecodeOptions{RejectDuplicates: true})
}

func isYAML(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
