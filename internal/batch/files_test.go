package batch_test

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"invoicenorm/internal/batch"
)

func TestFindInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PDF", "a.png", "notes.txt", "sub/c.jpeg", "sub/c.json"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := batch.FindInputs(dir, batch.DocumentExtensions)
	if err != nil {
		t.Fatalf("FindInputs() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.PDF"),
		filepath.Join(dir, "sub", "c.jpeg"),
	}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("FindInputs(documents) = %v, want %v", docs, want)
	}

	results, err := batch.FindInputs(dir, batch.ResultExtensions)
	if err != nil {
		t.Fatalf("FindInputs() error = %v", err)
	}
	if !reflect.DeepEqual(results, []string{filepath.Join(dir, "sub", "c.json")}) {
		t.Errorf("FindInputs(results) = %v", results)
	}
}

func TestFindInputsSkipsOutputFolder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"factura.json", "out/factura.json", "out/nested/ticket.json"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := batch.FindInputs(dir, batch.ResultExtensions, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("FindInputs() error = %v", err)
	}
	if want := []string{filepath.Join(dir, "factura.json")}; !reflect.DeepEqual(got, want) {
		t.Errorf("FindInputs() = %v, want %v", got, want)
	}
}

func TestOutputNamesAreDistinct(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{
			name:  "suffix taken by a later input",
			paths: []string{"in/x.pdf", "in/x.png", "in/x_2.pdf"},
			want:  []string{"x", "x_3", "x_2"},
		},
		{
			name:  "suffix taken by an earlier input",
			paths: []string{"in/x_2.pdf", "in/x.pdf", "in/x.png"},
			want:  []string{"x_2", "x", "x_3"},
		},
		{
			name:  "suffixed name repeated",
			paths: []string{"a/x.pdf", "b/x.pdf", "c/x_2.pdf", "d/x_2.pdf"},
			want:  []string{"x", "x_3", "x_2", "x_2_2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batch.OutputNames(tt.paths)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("OutputNames(%v) = %v, want %v", tt.paths, got, tt.want)
			}
			seen := make(map[string]bool, len(got))
			for _, name := range got {
				if seen[name] {
					t.Errorf("OutputNames(%v) repeats %q", tt.paths, name)
				}
				seen[name] = true
			}
		})
	}
}

func TestFindInputsErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := batch.FindInputs(filepath.Join(dir, "missing"), batch.DocumentExtensions); err == nil {
		t.Error("FindInputs(missing) error = nil")
	}

	file := filepath.Join(dir, "file.pdf")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := batch.FindInputs(file, batch.DocumentExtensions); err == nil {
		t.Error("FindInputs(file) error = nil")
	}
}

func ExampleOutputNames() {
	names := batch.OutputNames([]string{
		"2024/03/factura.pdf",
		"2024/04/factura.pdf",
		"2024/04/ticket.jpg",
		"2024/05/factura.png",
	})
	fmt.Println(names)
	// Output: [factura factura_2 ticket factura_3]
}
