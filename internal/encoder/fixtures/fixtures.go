// Package fixtures embeds canned backend payloads used by contract tests.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed testdata/*
var files embed.FS

// JSON decodes the named fixture file into dest.
func JSON(name string, dest any) error {
	data, err := Bytes(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode fixture %s: %w", name, err)
	}
	return nil
}

// Bytes returns the raw payload for a fixture file.
func Bytes(name string) ([]byte, error) {
	data, err := files.ReadFile("testdata/" + name)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", name, err)
	}
	return data, nil
}
