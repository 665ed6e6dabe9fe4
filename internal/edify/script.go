// Package edify assembles the updater-script an OTA package runs on device.
// It only builds text; statements are appended in the order they execute.
package edify

import (
	"fmt"
	"strings"
)

// ScriptPath is where the install script lives inside an OTA package.
const ScriptPath = "META-INF/com/google/android/updater-script"

// Script is an ordered list of updater-script statements.
type Script struct {
	lines []string
}

// NewScript returns an empty script.
func NewScript() *Script {
	return &Script{}
}

// AppendExtra appends one raw statement.
func (s *Script) AppendExtra(statement string) {
	s.lines = append(s.lines, statement)
}

// Print appends a ui_print statement showing message on the device console.
func (s *Script) Print(message string) {
	s.AppendExtra(fmt.Sprintf("ui_print(%s);", Quote(message)))
}

// PackageExtractFile appends a statement that writes a package entry to dest.
func (s *Script) PackageExtractFile(entry, dest string) {
	s.AppendExtra(fmt.Sprintf("package_extract_file(%s, %s);", Quote(entry), Quote(dest)))
}

// SetMetadata appends a set_metadata statement with ownership and an octal mode.
func (s *Script) SetMetadata(path string, uid, gid int, mode uint32) {
	s.AppendExtra(fmt.Sprintf("set_metadata(%s, \"uid\", %d, \"gid\", %d, \"mode\", 0%o);", Quote(path), uid, gid, mode))
}

// RunProgram appends a run_program statement.
func (s *Script) RunProgram(path string) {
	s.AppendExtra(fmt.Sprintf("run_program(%s);", Quote(path)))
}

// Lines returns a copy of the statements in order.
func (s *Script) Lines() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of statements.
func (s *Script) Len() int {
	return len(s.lines)
}

// String renders the script, one statement per line.
func (s *Script) String() string {
	if len(s.lines) == 0 {
		return ""
	}
	return strings.Join(s.lines, "\n") + "\n"
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// Quote renders value as an edify string literal.
func Quote(value string) string {
	return `"` + quoteReplacer.Replace(value) + `"`
}
