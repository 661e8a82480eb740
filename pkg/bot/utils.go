package bot

import (
	"strings"
	"unicode/utf8"
)

// maxMessageLength is Discord's limit for a single message body.
const maxMessageLength = 2000

const codeFence = "```"

// fenceOverhead is the room a part needs to reopen and close a code block.
const fenceOverhead = len(codeFence+"\n") + len("\n"+codeFence)

// splitMessage breaks content into parts of at most limit runes, preferring
// line boundaries. A code block cut across parts is closed at the end of one
// part and reopened at the start of the next. Empty content yields no parts.
func splitMessage(content string, limit int) []string {
	if content == "" {
		return nil
	}
	if utf8.RuneCountInString(content) <= limit {
		return []string{content}
	}
	if !strings.Contains(content, codeFence) || limit <= fenceOverhead {
		return splitLines(content, limit)
	}

	parts := splitLines(content, limit-fenceOverhead)
	inFence := false
	for i, part := range parts {
		opened := inFence
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(line, codeFence) {
				inFence = !inFence
			}
		}
		if opened {
			part = codeFence + "\n" + part
		}
		if inFence {
			part += "\n" + codeFence
		}
		parts[i] = part
	}
	return parts
}

func splitLines(content string, limit int) []string {
	var parts []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			parts = append(parts, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.Split(content, "\n") {
		lineLen := utf8.RuneCountInString(line)

		// Lines that can never fit get hard-cut
		for lineLen > limit {
			flush()
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
			lineLen -= limit
		}

		extra := lineLen
		if currentLen > 0 {
			extra++ // newline
		}
		if currentLen+extra > limit {
			flush()
			extra = lineLen
		}
		if currentLen > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
		currentLen += extra
	}
	flush()

	return parts
}
