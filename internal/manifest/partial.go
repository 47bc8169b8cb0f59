package manifest

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
)

// maxPrefixRetries bounds how many shorter prefixes are tried after a
// decoder reports a syntax error.
const maxPrefixRetries = 16

var lineNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`line (\d+)`),
	regexp.MustCompile(`:(\d+):`),
}

// errorLine extracts the 1-based line a decoder error points at, or 0.
func errorLine(err error) int {
	var tomlErr toml.ParseError
	if errors.As(err, &tomlErr) {
		return tomlErr.Position.Line
	}
	var modErrs modfile.ErrorList
	if errors.As(err, &modErrs) && len(modErrs) > 0 {
		return modErrs[0].Pos.Line
	}
	msg := err.Error()
	for _, re := range lineNumberPatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			if n, convErr := strconv.Atoi(m[1]); convErr == nil {
				return n
			}
		}
	}
	return 0
}

// firstLines returns the first n lines of content.
func firstLines(content []byte, n int) []byte {
	end := 0
	for i := 0; i < n; i++ {
		j := bytes.IndexByte(content[end:], '\n')
		if j < 0 {
			return content
		}
		end += j + 1
	}
	return content[:end]
}

// parsePrefix runs parse over content. On failure it retries on the lines
// up to the reported error line, shrinking one line at a time, and returns
// the first successful prefix result together with the original error.
func parsePrefix[T any](content []byte, parse func([]byte) (T, error)) (T, error) {
	v, err := parse(content)
	if err == nil {
		return v, nil
	}

	// Some decoders report the line before the failure, so the reported
	// line itself is tried first.
	line := errorLine(err)
	for l, tries := line, 0; l >= 1 && tries < maxPrefixRetries; l, tries = l-1, tries+1 {
		if p, perr := parse(firstLines(content, l)); perr == nil {
			return p, err
		}
	}
	var zero T
	return zero, err
}
