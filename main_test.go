package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func createSampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "calc.py", `rate = 3.5
total = rate + 2


def double(n):
    return n * 2


f = double
`)
	writeTestFile(t, dir, "models.py", `class User:
    role = "admin"

    def __init__(self, name: str) -> None:
        self.name = name
`)
	return dir
}

func runCLI(t *testing.T, args ...string) (string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if err := run(args, &stdout, &stderr); err != nil {
		t.Fatalf("run %v: %v\nstderr: %s", args, err, stderr.String())
	}
	return stdout.String(), stderr.String()
}

func TestAtReference(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	out, _ := runCLI(t, "at", filepath.Join(dir, "calc.py"), "2:10")
	if got := strings.TrimSpace(out); got != "rate: float" {
		t.Errorf("got %q, want %q", got, "rate: float")
	}
}

func TestAtBinding(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	out, _ := runCLI(t, "at", filepath.Join(dir, "calc.py"), "2:1")
	if got := strings.TrimSpace(out); got != "total: float" {
		t.Errorf("got %q, want %q", got, "total: float")
	}
}

func TestAtFunctionAssignment(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	out, _ := runCLI(t, "at", filepath.Join(dir, "calc.py"), "9:5")
	if got := strings.TrimSpace(out); got != "double: function assignment - double" {
		t.Errorf("got %q", got)
	}
}

func TestAtPlaceholders(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	notes := writeTestFile(t, dir, "notes.txt", "x = 1\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"not python", []string{"at", notes, "1:1"}, "Not a Python file"},
		{"operator", []string{"at", filepath.Join(dir, "calc.py"), "1:6"}, "No variable at caret"},
		{"past end", []string{"at", filepath.Join(dir, "calc.py"), "40:1"}, "No element at caret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, _ := runCLI(t, tt.args...)
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAtBadPosition(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"at", filepath.Join(dir, "calc.py"), "nope"}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for malformed position")
	}
}

func TestScanToon(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	out, _ := runCLI(t, "scan", dir)
	for _, want := range []string{
		"files[2]{path,language,bindings}:",
		"calc.py,rate,1,1,module,float",
		"calc.py,total,2,1,module,float",
		"calc.py,n,5,12,double,Unknown type",
		"calc.py,f,9,1,module,function assignment - double",
		"models.py,role,2,5,User,str",
		"models.py,name,5,9,User.__init__,Unknown type",
		"models.py,name,4,24,User.__init__,Unknown type",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestScanTable(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	out, _ := runCLI(t, "scan", "--format", "table", dir)
	if !strings.Contains(out, "TYPE") {
		t.Errorf("missing table header:\n%s", out)
	}
	if !strings.Contains(out, "function assignment - double") {
		t.Errorf("missing binding row:\n%s", out)
	}
}

func TestScanUnsupportedFormat(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"scan", "--format", "xml", dir}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestScanMaxFiles(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	out, _ := runCLI(t, "scan", "-n", "1", dir)
	if !strings.Contains(out, "files[1]") {
		t.Errorf("expected a single file:\n%s", out)
	}
}

func TestScanEmptyDir(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"scan", t.TempDir()}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for a directory without python files")
	}
}

func TestReplay(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	calc := filepath.Join(dir, "calc.py")

	events := strings.Join([]string{
		`{"event":"sleep","ms":0}`,
		`{"event":"caret","line":2,"column":1}`,
		`{"event":"sleep","ms":150}`,
		`{"event":"caret","line":1,"column":6}`,
		`{"event":"sleep","ms":150}`,
		`{"event":"close"}`,
	}, "\n")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetIn(strings.NewReader(events))
	cmd.SetArgs([]string{"replay", calc})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("replay: %v\nstderr: %s", err, stderr.String())
	}

	got := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	want := []string{
		"rate: float",
		"total: float",
		"No variable at caret",
		"No editor open",
	}
	if len(got) != len(want) {
		t.Fatalf("got labels %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReplayUnknownEvent(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetIn(strings.NewReader(`{"event":"jump"}`))
	cmd.SetArgs([]string{"replay", filepath.Join(dir, "calc.py")})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown event")
	}
}

func TestConfigFlag(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	cfg := writeTestFile(t, dir, "varhint.yaml", "max_depth: 0\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{"--config", cfg, "at", filepath.Join(dir, "calc.py"), "1:1"}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}

func TestParsePosition(t *testing.T) {
	t.Parallel()

	line, col, err := parsePosition("12:7")
	if err != nil || line != 12 || col != 7 {
		t.Errorf("parsePosition(12:7) = %d, %d, %v", line, col, err)
	}
	for _, bad := range []string{"", "3", "0:1", "1:0", "a:b"} {
		if _, _, err := parsePosition(bad); err == nil {
			t.Errorf("parsePosition(%q): expected error", bad)
		}
	}
}

func TestLabelPrinterSkipsRepeats(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	label := "a: int"
	notify := newLabelPrinter(&out, func() string { return label })

	// Two hooks observing the same stored label print it once.
	notify()
	notify()
	label = "b: str"
	notify()
	label = "a: int"
	notify()

	want := "a: int\nb: str\na: int\n"
	if got := out.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
