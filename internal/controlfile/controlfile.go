// Package controlfile implements the Debian-style control-file text
// format: stanzas of "Field: value" lines separated by blank lines.
//
// Field values are single-line only. Continuation lines (folded
// multi-line values) are not interpreted; they are carried through
// untouched inside the raw stanza text so re-emitting a fragment never
// corrupts them, but field extraction ignores them.
package controlfile

import (
	"os"
	"path"
	"regexp"
	"strings"
)

var (
	// A stanza boundary is one blank line; a line containing only
	// whitespace counts as blank.
	stanzaSep = regexp.MustCompile(`\n[ \t]*\n[\s]*`)

	// Field names per Debian policy: printable ASCII minus colon
	// and whitespace.
	fieldLine = regexp.MustCompile(`^([!-9;-~]+):[ \t]?(.*)$`)
)

// Field is one name/value pair of a stanza.
type Field struct {
	Name  string
	Value string
}

// Entry is one parsed stanza. Field names are unique: when a name
// repeats in the input, the last occurrence wins and the field keeps
// its first position.
type Entry struct {
	Fields []Field
}

// Get returns the value of the named field.
func (e Entry) Get(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Set adds or overwrites a field.
func (e *Entry) Set(name, value string) {
	for i, f := range e.Fields {
		if f.Name == name {
			e.Fields[i].Value = value
			return
		}
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
}

// String renders the entry as control-file text without a trailing
// blank line.
func (e Entry) String() string {
	var b strings.Builder
	for _, f := range e.Fields {
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// SplitBlocks splits fragment text on blank-line boundaries and
// returns the trimmed non-empty stanza blocks in input order.
func SplitBlocks(text string) []string {
	var blocks []string
	for _, block := range stanzaSep.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// ParseFragment parses control-file text into entries. Lines that do
// not look like "Field: value" are skipped.
func ParseFragment(text string) []Entry {
	var entries []Entry
	for _, block := range SplitBlocks(text) {
		var e Entry
		for _, line := range strings.Split(block, "\n") {
			m := fieldLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			e.Set(m[1], strings.TrimSpace(m[2]))
		}
		if len(e.Fields) > 0 {
			entries = append(entries, e)
		}
	}
	return entries
}

// Serialize renders entries as a fragment: one blank line between
// consecutive entries and exactly one trailing newline.
func Serialize(entries []Entry) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, e.String())
	}
	return SerializeBlocks(blocks)
}

// SerializeBlocks joins raw stanza blocks into a fragment with one
// blank line between consecutive blocks and one trailing newline.
func SerializeBlocks(blocks []string) string {
	return strings.Join(blocks, "\n\n") + "\n"
}

// ExtractField scans a raw stanza block for the named field. When the
// field repeats, the last occurrence wins.
func ExtractField(block, name string) (string, bool) {
	prefix := name + ":"
	value, found := "", false
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(line, prefix) {
			value = strings.TrimSpace(line[len(prefix):])
			found = true
		}
	}
	return value, found
}

// BuildChecksumIndex maps artifact base filenames to their recorded
// SHA256 digests. Entries missing either field are skipped; later
// entries overwrite earlier ones for the same filename.
func BuildChecksumIndex(fragment string) map[string]string {
	index := make(map[string]string)
	for _, e := range ParseFragment(fragment) {
		filename, ok := e.Get("Filename")
		if !ok {
			continue
		}
		sha, ok := e.Get("SHA256")
		if !ok {
			continue
		}
		index[path.Base(filename)] = sha
	}
	return index
}

// LoadChecksumIndex reads a fragment file and builds its checksum
// index. A missing or unreadable file yields an empty index: a
// first-ever run has no prior record.
func LoadChecksumIndex(path string) map[string]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]string{}
	}
	return BuildChecksumIndex(string(data))
}
