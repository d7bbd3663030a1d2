package devcontext

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/discovery"
)

// genericLocation catches path:line references no language pattern knows.
var genericLocation = regexp.MustCompile(`(?m)([\w./\\-]+\.[A-Za-z]{1,5}):(\d+)`)

var (
	pythonDef   = regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+(\w+)`)
	pythonClass = regexp.MustCompile(`^(\s*)class\s+(\w+)`)
)

// maxSourceBytes stops snippet rendering for generated or binary files.
const maxSourceBytes = 4 << 20

// ExtractFile finds the source line the error refers to and renders a
// window around it. It returns nil without error when no reference is found
// or the referenced file does not exist under root.
func (e *Extractor) ExtractFile(root, text, filePath string) (*FileLocationContext, error) {
	loc, found := e.locate(text)

	path := filePath
	line := 0

	switch {
	case path == "" && !found:
		return nil, nil
	case path == "":
		path, line = loc.Path, loc.Line
	case found && filepath.Base(loc.Path) == filepath.Base(filePath):
		line = loc.Line
	}

	resolved, ok := resolvePath(root, path)
	if !ok {
		e.log.WithField("path", path).Debug("Referenced file not found")

		return nil, nil
	}

	lines, err := readLines(resolved)
	if err != nil {
		return nil, err
	}

	if line > len(lines) {
		line = 0
	}

	fc := &FileLocationContext{
		Path:     resolved,
		Line:     line,
		Function: UnknownScope,
		Type:     UnknownScope,
	}

	lang, langFound := e.lib.LanguageByExtension(resolved)
	if langFound {
		fc.Language = lang.Name()
	}

	fc.Snippet, fc.StartLine, fc.EndLine = renderSnippet(lines, line, e.opts.SnippetRadius)

	if langFound && lang.ResolvesScope() && line > 0 {
		fc.Function, fc.Type = resolveIndentedScope(lines, line)
	}

	return fc, nil
}

// locate prefers the detected language's location patterns, then any
// language, then a generic path:line pattern.
func (e *Extractor) locate(text string) (diagnostic.Location, bool) {
	if strings.TrimSpace(text) == "" {
		return diagnostic.Location{}, false
	}

	preferred := e.lib.Detect(text).Name()
	if loc, ok := e.lib.Locate(text, preferred); ok {
		return loc, true
	}

	return diagnostic.FindLocation(genericLocation, text)
}

// resolvePath maps a path from error output onto a file under root. Paths
// printed inside containers or CI runners rarely match the local checkout,
// so trailing components are tried against root as well.
func resolvePath(root, path string) (string, bool) {
	path = filepath.FromSlash(strings.TrimSpace(path))
	if path == "" {
		return "", false
	}

	candidates := make([]string, 0, 8)

	if filepath.IsAbs(path) {
		candidates = append(candidates, path)
	} else if root != "" {
		candidates = append(candidates, filepath.Join(root, path))
	}

	if root != "" {
		parts := strings.Split(strings.TrimPrefix(path, string(filepath.Separator)), string(filepath.Separator))
		for i := 1; i < len(parts); i++ {
			candidates = append(candidates, filepath.Join(append([]string{root}, parts[i:]...)...))
		}
	}

	for _, c := range candidates {
		if discovery.FileExists(c) {
			return filepath.Clean(c), true
		}
	}

	return "", false
}

func readLines(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.Size() > maxSourceBytes {
		return nil, fmt.Errorf("%s is too large to render (%d bytes)", path, info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	lines := make([]string, 0, 128)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return lines, nil
}

// renderSnippet renders lines [target-radius, target+radius] with line
// numbers, marking the target. A zero target renders the top of the file.
func renderSnippet(lines []string, target, radius int) (string, int, int) {
	if len(lines) == 0 {
		return "", 0, 0
	}

	center := target
	if center <= 0 {
		center = 1 + radius
	}

	first := max(1, center-radius)
	last := min(len(lines), center+radius)
	width := len(strconv.Itoa(last))

	var sb strings.Builder

	for n := first; n <= last; n++ {
		marker := "   "
		if n == target {
			marker = ">> "
		}

		fmt.Fprintf(&sb, "%s%*d | %s\n", marker, width, n, lines[n-1])
	}

	return strings.TrimRight(sb.String(), "\n"), first, last
}

// resolveIndentedScope walks upwards from line and returns the nearest
// enclosing def and class, each UnknownScope when absent.
func resolveIndentedScope(lines []string, line int) (function, typ string) {
	function, typ = UnknownScope, UnknownScope
	limit := indentOf(lines[line-1])

	for n := line; n >= 1; n-- {
		text := lines[n-1]
		if strings.TrimSpace(text) == "" || strings.HasPrefix(strings.TrimSpace(text), "#") {
			continue
		}

		indent := indentOf(text)

		// The target line itself may be the def.
		if n != line && indent >= limit {
			continue
		}

		if m := pythonDef.FindStringSubmatch(text); m != nil && function == UnknownScope {
			function = m[2]
		} else if m := pythonClass.FindStringSubmatch(text); m != nil {
			typ = m[2]

			return function, typ
		}

		limit = indent
		if indent == 0 {
			return function, typ
		}
	}

	return function, typ
}

func indentOf(s string) int {
	n := 0

	for _, r := range s {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 8
		default:
			return n
		}
	}

	return n
}
