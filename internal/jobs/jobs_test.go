package jobs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeJobFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write job file: %v", err)
	}
	return path
}

func TestParseFile(t *testing.T) {
	path := writeJobFile(t, `
# warm the cache
echo one

echo "two words"
sh -c 'exit 3'
`)

	jobs, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}

	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	for i, job := range jobs {
		if job.ID != i+1 {
			t.Errorf("expected job ID %d, got %d", i+1, job.ID)
		}
	}
	if !reflect.DeepEqual(jobs[1].Argv, []string{"echo", "two words"}) {
		t.Errorf("expected quoted argument preserved, got %v", jobs[1].Argv)
	}
	if !reflect.DeepEqual(jobs[2].Argv, []string{"sh", "-c", "exit 3"}) {
		t.Errorf("expected single-quoted argument preserved, got %v", jobs[2].Argv)
	}
}

func TestParseFileBadLine(t *testing.T) {
	path := writeJobFile(t, "echo 'unterminated\n")
	if _, err := ParseFile(path); err == nil {
		t.Error("expected error for unclosed quote")
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{`echo hello`, []string{"echo", "hello"}, false},
		{`echo "hello world"`, []string{"echo", "hello world"}, false},
		{`echo 'it works'`, []string{"echo", "it works"}, false},
		{`echo a\ b`, []string{"echo", "a b"}, false},
		{`echo "nested 'quotes'"`, []string{"echo", "nested 'quotes'"}, false},
		{`  spaced   out  `, []string{"spaced", "out"}, false},
		{`echo "unclosed`, nil, true},
		{``, nil, true},
	}

	for _, tt := range tests {
		got, err := ParseLine(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLine(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseLine(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
