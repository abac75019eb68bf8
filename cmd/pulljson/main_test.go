package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExecuteReturnsZeroForValidDocument(t *testing.T) {
	t.Parallel()

	input := writeDocument(t, `{"items":[{"id":1},{"id":2}]}`)
	if exitCode := execute([]string{"pulljson", "--mode", "find", "--field", "id", input}); exitCode != 0 {
		t.Fatalf("execute() exitCode = %d, want 0", exitCode)
	}
}

func TestExecuteReturnsOneForMalformedDocument(t *testing.T) {
	t.Parallel()

	input := writeDocument(t, `{"items":[{"id":1},{"id":2}`)
	if exitCode := execute([]string{"pulljson", "--mode", "parse", input}); exitCode != 1 {
		t.Fatalf("execute() exitCode = %d, want 1", exitCode)
	}
}

func TestExecuteReturnsTwoForUsageErrors(t *testing.T) {
	t.Parallel()

	input := writeDocument(t, `{}`)
	tests := []struct {
		name string
		args []string
	}{
		{name: "no input", args: []string{"pulljson"}},
		{name: "unknown mode", args: []string{"pulljson", "--mode", "walk", input}},
		{name: "missing file", args: []string{"pulljson", filepath.Join(t.TempDir(), "missing.json")}},
		{name: "unsupported path", args: []string{"pulljson", "--mode", "extract", "--path", "$..id", input}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if exitCode := execute(tt.args); exitCode != 2 {
				t.Fatalf("execute() exitCode = %d, want 2", exitCode)
			}
		})
	}
}

func writeDocument(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
