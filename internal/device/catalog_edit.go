package device

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	// toml v1 only checks syntax here; the edit itself is line based so that
	// comments and layout in the profile survive.
	toml "github.com/pelletier/go-toml"

	"github.com/conn-castle/ota-layer/internal/messages"
	"github.com/conn-castle/ota-layer/internal/partition"
)

// AppendPartition adds name to the end of catalog.partitions in profile text.
// Names already listed are refused: the catalog only grows.
func AppendPartition(content string, name partition.Name) (string, error) {
	if _, err := toml.LoadBytes([]byte(content)); err != nil {
		return "", fmt.Errorf(messages.DeviceCatalogParseFailedFmt, err)
	}
	current, err := Parse([]byte(content), "profile")
	if err != nil {
		return "", fmt.Errorf(messages.DeviceCatalogParseFailedFmt, err)
	}
	if slices.Contains(current.Catalog.Partitions, string(name)) {
		return "", fmt.Errorf(messages.DeviceCatalogAlreadyListedFmt, name)
	}
	catalog, err := current.PartitionCatalog()
	if err != nil {
		return "", err
	}
	if _, err := catalog.Append(name); err != nil {
		return "", err
	}

	lines := strings.Split(content, "\n")
	start := findCatalogKey(lines)
	if start < 0 {
		return "", fmt.Errorf(messages.DeviceCatalogKeyMissing)
	}

	literal := strconv.Quote(string(name))
	code := lines[start][:commentStart(lines[start])]
	openIdx := strings.Index(code, "[")
	if closeIdx := strings.LastIndex(code, "]"); closeIdx > openIdx {
		lines[start] = appendInline(lines[start], openIdx, closeIdx, literal)
	} else {
		lines, err = appendMultiline(lines, start, literal)
		if err != nil {
			return "", err
		}
	}

	updated := strings.Join(lines, "\n")
	if _, err := toml.LoadBytes([]byte(updated)); err != nil {
		return "", fmt.Errorf(messages.DeviceCatalogResultInvalidFmt, err)
	}
	parsed, err := Parse([]byte(updated), "profile")
	if err != nil {
		return "", fmt.Errorf(messages.DeviceCatalogResultInvalidFmt, err)
	}
	want := append(slices.Clone(current.Catalog.Partitions), string(name))
	if !slices.Equal(parsed.Catalog.Partitions, want) {
		return "", fmt.Errorf(messages.DeviceCatalogEditMismatchFmt, name, parsed.Catalog.Partitions)
	}
	return updated, nil
}

// findCatalogKey returns the line index of `partitions = [` inside [catalog].
func findCatalogKey(lines []string) int {
	section := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			section = strings.Trim(trimmed, "[] ")
			continue
		}
		if section != "catalog" {
			continue
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if !ok || strings.TrimSpace(key) != "partitions" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(value), "[") {
			return i
		}
	}
	return -1
}

// appendInline handles `partitions = ["a", "b"]` on a single line.
func appendInline(line string, openIdx, closeIdx int, literal string) string {
	body := strings.TrimSpace(line[openIdx+1 : closeIdx])
	return line[:openIdx+1] + joinElement(body, literal) + line[closeIdx:]
}

// joinElement appends literal to a comma separated element list.
func joinElement(body, literal string) string {
	switch {
	case body == "":
		return literal
	case strings.HasSuffix(body, ","):
		return body + " " + literal
	default:
		return body + ", " + literal
	}
}

// appendMultiline adds literal as the array's last element. A standalone
// closing bracket gets a new element line above it, reusing the indentation
// of the last element; a bracket closing an element line gets the literal
// inserted ahead of it on that line.
func appendMultiline(lines []string, start int, literal string) ([]string, error) {
	closing := -1
	for i := start + 1; i < len(lines); i++ {
		code := lines[i][:commentStart(lines[i])]
		trimmed := strings.TrimSpace(code)
		if strings.HasPrefix(trimmed, "]") {
			closing = i
			break
		}
		if strings.HasSuffix(trimmed, "]") {
			cut := strings.LastIndex(code, "]")
			head := strings.TrimRight(lines[i][:cut], " \t")
			indent := head[:len(head)-len(strings.TrimLeft(head, " \t"))]
			lines[i] = indent + joinElement(strings.TrimSpace(head), literal) + lines[i][cut:]
			return lines, nil
		}
	}
	if closing < 0 {
		return nil, fmt.Errorf(messages.DeviceCatalogArrayUnclosed)
	}

	indent := "  "
	last := -1
	for i := closing - 1; i > start; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		last = i
		indent = lines[i][:len(lines[i])-len(strings.TrimLeft(lines[i], " \t"))]
		break
	}
	if last >= 0 {
		lines[last] = ensureTrailingComma(lines[last])
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:closing]...)
	out = append(out, indent+literal+",")
	out = append(out, lines[closing:]...)
	return out, nil
}

// ensureTrailingComma adds a comma after an element, ahead of any trailing comment.
func ensureTrailingComma(line string) string {
	cut := commentStart(line)
	trimmed := strings.TrimRight(line[:cut], " \t")
	if strings.HasSuffix(trimmed, ",") {
		return line
	}
	if cut == len(line) {
		return trimmed + ","
	}
	return trimmed + ", " + line[cut:]
}

// commentStart returns the index of the first # outside a string on line,
// or len(line) when the line has no comment.
func commentStart(line string) int {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == 0 && c == '#':
			return i
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == '"' && c == '\\':
			i++
		case c == quote:
			quote = 0
		}
	}
	return len(line)
}
