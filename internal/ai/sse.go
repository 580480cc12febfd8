package ai

import (
	"bufio"
	"io"
	"strings"
)

const sseDone = "[DONE]"

// scanSSE reads an OpenAI-style server-sent-event stream and invokes onData
// with each data payload, skipping the [DONE] terminator. Lines that are not
// data lines (event names, comments, blanks) are ignored.
func scanSSE(r io.Reader, onData func(payload string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") || strings.Contains(line, sseDone) {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		if payload != "" {
			onData(payload)
		}
	}
	return scanner.Err()
}
