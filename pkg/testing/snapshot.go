package testing

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/headless"
)

// UpdateEnv, when set to 1, makes MatchesFile rewrite golden files instead
// of comparing against them.
const UpdateEnv = "RENDERKIT_UPDATE_SNAPSHOTS"

// TestingT is the part of *testing.T that MatchesFile reports through.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot is the component tree next to the host scene it produced.
type Snapshot struct {
	Tree  core.Node `yaml:"tree"`
	Scene []string  `yaml:"scene,omitempty"`
}

// CaptureSnapshot records the mounted tree and the stage dump.
func (t *Tester) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{}
	if t.root != nil {
		snap.Tree = t.root.Snapshot()
	}
	if dump := strings.TrimRight(headless.Dump(t.stage), "\n"); dump != "" {
		snap.Scene = strings.Split(dump, "\n")
	}
	return snap
}

// MatchesFile compares s with the YAML golden file at path and reports a
// line diff on mismatch.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()
	if os.Getenv(UpdateEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("update snapshot %s: %v", path, err)
		}
		return
	}
	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("snapshot %s does not exist; create it with %s=1 go test -run '%s'", path, UpdateEnv, t.Name())
		return
	}
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
		return
	}
	got, err := s.encode()
	if err != nil {
		t.Fatalf("encode snapshot: %v", err)
		return
	}
	if !bytes.Equal(got, want) {
		t.Errorf("snapshot %s differs:\n%s\nAccept with %s=1 go test -run '%s'",
			path, lineDiff(string(want), string(got)), UpdateEnv, t.Name())
	}
}

// UpdateFile writes s to path, creating parent directories.
func (s *Snapshot) UpdateFile(path string) error {
	data, err := s.encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff from other to s, or "" when they are equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, errA := other.encode()
	b, errB := s.encode()
	if err := errors.Join(errA, errB); err != nil {
		return err.Error()
	}
	if bytes.Equal(a, b) {
		return ""
	}
	return lineDiff(string(a), string(b))
}

// ReadSnapshot loads a golden file.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return &snap, nil
}

func (s *Snapshot) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// lineDiff marks lines only in from with "-" and lines only in to with "+",
// keeping the longest common subsequence as context.
func lineDiff(from, to string) string {
	a := strings.Split(strings.TrimSuffix(from, "\n"), "\n")
	b := strings.Split(strings.TrimSuffix(to, "\n"), "\n")

	// lcs[i][j] is the common length of a[i:] and b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var sb strings.Builder
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			sb.WriteString("  " + a[i] + "\n")
			i++
			j++
		case i < len(a) && (j == len(b) || lcs[i+1][j] >= lcs[i][j+1]):
			sb.WriteString("- " + a[i] + "\n")
			i++
		default:
			sb.WriteString("+ " + b[j] + "\n")
			j++
		}
	}
	return sb.String()
}
