package provider

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/pairreview/pairreview/pkg/logger"
)

// maxPendingChunkBytes bounds how much unparseable text parseStream will
// accumulate before giving up on the current chunk and resuming at the
// next line that looks like the start of a JSON value.
const maxPendingChunkBytes = 1 << 20

// parseStream reads a provider's stdout and calls emit for each
// recognized suggestion event, tolerating the three boundary protocols
// named in SPEC_FULL.md §4.2: line-delimited JSON, blank-line-separated
// JSON objects, and a single trailing JSON array. It accumulates lines
// until they form one complete JSON value, which makes all three shapes
// fall out of the same loop: an NDJSON line is valid on its own and
// flushes immediately, a pretty-printed object accumulates across lines
// until its closing brace, and a trailing array accumulates until its
// closing bracket and is then split into its elements.
func parseStream(r io.Reader, emit func(Event)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxPendingChunkBytes)

	var pending strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if pending.Len() == 0 {
			if line[0] != '{' && line[0] != '[' {
				logger.Warn("provider stream: skipping non-JSON line", zap.String("line", truncateForLog(line)))
				continue
			}
		} else {
			pending.WriteByte('\n')
		}
		pending.WriteString(line)

		chunk := pending.String()
		if json.Valid([]byte(chunk)) {
			processChunk(chunk, emit)
			pending.Reset()
		} else if pending.Len() > maxPendingChunkBytes {
			logger.Warn("provider stream: dropping oversized unparseable chunk")
			pending.Reset()
		}
	}
	if pending.Len() > 0 {
		chunk := pending.String()
		if json.Valid([]byte(chunk)) {
			processChunk(chunk, emit)
		} else {
			logger.Warn("provider stream: trailing chunk never became valid JSON, dropped")
		}
	}
}

func processChunk(chunk string, emit func(Event)) {
	trimmed := strings.TrimSpace(chunk)
	if len(trimmed) == 0 {
		return
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			logger.Warn("provider stream: malformed array chunk skipped", zap.Error(err))
			return
		}
		for _, item := range items {
			emitRawEvent(item, emit)
		}
		return
	}
	emitRawEvent(json.RawMessage(trimmed), emit)
}

// wireEvent is the on-the-wire shape of one suggestion-stream event,
// provider-agnostic per SPEC_FULL.md §4.2.
type wireEvent struct {
	Kind       string   `json:"kind"`
	File       string   `json:"file"`
	Text       string   `json:"text"`
	Line       *int     `json:"line"`
	LineEnd    *int     `json:"line_end"`
	Side       string   `json:"side"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Reasoning  *string  `json:"reasoning"`
	Confidence *float64 `json:"confidence"`
}

func emitRawEvent(raw json.RawMessage, emit func(Event)) {
	var wire wireEvent
	if err := json.Unmarshal(raw, &wire); err != nil {
		logger.Warn("provider stream: malformed event chunk skipped", zap.Error(err))
		return
	}
	if wire.Kind == "" {
		return
	}
	event := Event{Kind: EventKind(wire.Kind), File: wire.File, Text: wire.Text}
	if event.Kind == EventSuggestion {
		event.Suggestion = &Suggestion{
			File:       wire.File,
			Line:       wire.Line,
			LineEnd:    wire.LineEnd,
			Side:       wire.Side,
			Type:       wire.Type,
			Title:      wire.Title,
			Body:       wire.Body,
			Reasoning:  wire.Reasoning,
			Confidence: wire.Confidence,
		}
	}
	emit(event)
}

func truncateForLog(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
