package headless

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// glslVariable is a top-level in/out/uniform declaration found in shader text.
type glslVariable struct {
	Name     string
	Type     string
	Location int // -1 when no layout(location = N) qualifier is present
	Line     int
}

// glslUnit is the result of checking one shader stage.
type glslUnit struct {
	Version  int
	Inputs   []glslVariable
	Outputs  []glslVariable
	Uniforms []glslVariable
}

var (
	versionPattern = regexp.MustCompile(`^#version\s+(\d+)(\s+\w+)?\s*$`)
	declPattern    = regexp.MustCompile(`^(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?(?:(?:flat|smooth|noperspective)\s+)?(in|out|uniform)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*\d+\s*\])?\s*;`)
	mainPattern    = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(?:void)?\s*\)`)
)

// checkGLSL validates shader text the way a strict driver front-end would for the subset the
// engine relies on and extracts its interface. The returned log uses the "ERROR: 0:line: msg"
// layout drivers commonly emit.
func checkGLSL(source string) (*glslUnit, string) {
	var errs []string
	fail := func(line int, format string, args ...any) {
		errs = append(errs, fmt.Sprintf("ERROR: 0:%d: %s", line, fmt.Sprintf(format, args...)))
	}

	if strings.TrimSpace(source) == "" {
		fail(0, "empty shader source")
		return nil, strings.Join(errs, "\n")
	}

	lines := strings.Split(stripComments(source), "\n")
	unit := &glslUnit{}

	versionSeen := false
	depth := 0
	parens := 0
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "#version") {
				if versionSeen {
					fail(lineNo, "'#version' : must occur exactly once")
					continue
				}
				m := versionPattern.FindStringSubmatch(line)
				if m == nil {
					fail(lineNo, "'#version' : malformed directive")
					continue
				}
				v, _ := strconv.Atoi(m[1])
				unit.Version = v
				versionSeen = true
				continue
			}
			if !versionSeen {
				fail(lineNo, "'#version' : must be the first directive")
			}
			if strings.HasPrefix(line, "#error") {
				fail(lineNo, "'#error' : %s", strings.TrimSpace(strings.TrimPrefix(line, "#error")))
			}
			continue
		}

		if !versionSeen {
			fail(lineNo, "'#version' : required before any declaration")
			versionSeen = true
		}

		if depth == 0 {
			if m := declPattern.FindStringSubmatch(line); m != nil {
				loc := -1
				if m[1] != "" {
					loc, _ = strconv.Atoi(m[1])
				}
				v := glslVariable{Name: m[4], Type: m[3], Location: loc, Line: lineNo}
				switch m[2] {
				case "in":
					unit.Inputs = append(unit.Inputs, v)
				case "out":
					unit.Outputs = append(unit.Outputs, v)
				case "uniform":
					unit.Uniforms = append(unit.Uniforms, v)
				}
			}
		}

		for _, r := range line {
			switch r {
			case '{':
				depth++
			case '}':
				depth--
				if depth < 0 {
					fail(lineNo, "'}' : unexpected closing brace")
					depth = 0
				}
			case '(':
				parens++
			case ')':
				parens--
				if parens < 0 {
					fail(lineNo, "')' : unexpected closing parenthesis")
					parens = 0
				}
			}
		}
	}

	last := len(lines)
	if !versionSeen {
		fail(0, "'#version' : missing version directive")
	}
	if depth != 0 {
		fail(last, "'{' : unexpected end of file, %d unclosed brace(s)", depth)
	}
	if parens != 0 {
		fail(last, "'(' : unexpected end of file, %d unclosed parenthesis", parens)
	}
	if !mainPattern.MatchString(source) {
		fail(0, "'main' : function is not defined")
	}

	if len(errs) > 0 {
		return nil, strings.Join(errs, "\n")
	}
	return unit, ""
}

// stripComments removes // and /* */ comments while preserving line breaks so that line
// numbers in diagnostics still match the submitted text.
func stripComments(source string) string {
	var b strings.Builder
	b.Grow(len(source))

	inBlock := false
	inLine := false
	for i := 0; i < len(source); i++ {
		c := source[i]
		switch {
		case inBlock:
			if c == '*' && i+1 < len(source) && source[i+1] == '/' {
				inBlock = false
				i++
			} else if c == '\n' {
				b.WriteByte('\n')
			}
		case inLine:
			if c == '\n' {
				inLine = false
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(source) && source[i+1] == '/':
			inLine = true
			i++
		case c == '/' && i+1 < len(source) && source[i+1] == '*':
			inBlock = true
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
