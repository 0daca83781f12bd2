package msgs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedMessage indicates a message body can't be parsed.
var ErrMalformedMessage = errors.New("malformed message")

// MalformedError describes why a message body was rejected.
type MalformedError struct {
	Verb   string
	Reason string
}

// Error implements error.
func (e *MalformedError) Error() string {
	if e.Verb == "" {
		return "malformed message: " + e.Reason
	}
	return fmt.Sprintf("malformed %s message: %s", e.Verb, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedMessage) hold.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedMessage
}

func malformed(verb, format string, args ...interface{}) error {
	return &MalformedError{Verb: verb, Reason: fmt.Sprintf(format, args...)}
}

var numberPattern = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)$`)

// Parse parses a message body. Known verbs must carry arguments of
// the expected shape; other verbs are accepted with any arguments.
// On error the returned message is still non-nil when the verb was
// found, so callers can decide based on the verb.
func Parse(body []byte) (*Message, error) {
	text := string(body)
	pos := strings.IndexByte(text, ' ')
	if pos < 0 {
		msg := &Message{Verb: text}
		if text == "" {
			return nil, malformed("", "empty body")
		}
		if IsKnownVerb(text) {
			return msg, malformed(text, "missing arguments")
		}
		return msg, nil
	}
	msg := &Message{Verb: text[:pos]}
	if msg.Verb == "" {
		return nil, malformed("", "empty verb")
	}
	args, err := parseArgs(msg.Verb, text[pos+1:])
	if err != nil {
		return msg, err
	}
	msg.Args = args
	if err = msg.checkShape(); err != nil {
		return msg, err
	}
	return msg, nil
}

// ParseArgs tokenizes an argument list.
func ParseArgs(text string) ([]Arg, error) {
	return parseArgs("", text)
}

func parseArgs(verb, text string) (args []Arg, err error) {
	for i := 0; ; {
		for i < len(text) && isSpace(text[i]) {
			i++
		}
		if i >= len(text) {
			return
		}
		if text[i] == '"' {
			var s string
			if s, i, err = scanQuoted(verb, text, i); err != nil {
				return nil, err
			}
			args = append(args, String(s))
			continue
		}
		start := i
		for i < len(text) && !isSpace(text[i]) {
			i++
		}
		args = append(args, classify(text[start:i]))
	}
}

// scanQuoted scans the quoted string starting at text[start] and
// returns its unescaped value and the position after the closing quote.
func scanQuoted(verb, text string, start int) (string, int, error) {
	var sb strings.Builder
	for i := start + 1; i < len(text); i++ {
		if text[i] != '"' {
			sb.WriteByte(text[i])
			continue
		}
		if i+1 < len(text) && text[i+1] == '"' {
			sb.WriteByte('"')
			i++
			continue
		}
		if i+1 < len(text) && !isSpace(text[i+1]) {
			return "", 0, malformed(verb, "unexpected %q after quoted string at %d", text[i+1], i+1)
		}
		return sb.String(), i + 1, nil
	}
	return "", 0, malformed(verb, "unterminated quoted string at %d", start)
}

func classify(token string) Arg {
	switch token {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if numberPattern.MatchString(token) {
		if v, err := strconv.ParseFloat(token, 64); err == nil {
			return Number(v)
		}
	}
	return String(token)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
