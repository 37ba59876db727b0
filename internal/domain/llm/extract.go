package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	generrors "github.com/Johtaguerrero/artigogenio/internal/domain/errors"
)

var fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// ExtractJSON pulls a JSON value out of free-form model text. Models add
// code fences and commentary around JSON despite instructions, so the
// extraction tolerates both: fenced content wins, otherwise the span from
// the first opening brace/bracket to the last closing one is taken.
func ExtractJSON(raw string) ([]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, generrors.New(generrors.KindEmptyResponse, "empty model response")
	}

	candidate := trimmed
	if m := fencedBlockRe.FindStringSubmatch(trimmed); m != nil {
		candidate = strings.TrimSpace(m[1])
	} else {
		start := strings.IndexAny(trimmed, "{[")
		end := strings.LastIndexAny(trimmed, "}]")
		if start >= 0 && end > start {
			candidate = trimmed[start : end+1]
		}
	}

	if !json.Valid([]byte(candidate)) {
		return nil, generrors.New(generrors.KindMalformedOutput, "model did not return valid structured data")
	}
	return []byte(candidate), nil
}

// DecodeStructured extracts and unmarshals a JSON payload into v.
func DecodeStructured(raw string, v any) error {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return generrors.Wrap(generrors.KindMalformedOutput, "model did not return valid structured data", err)
	}
	return nil
}
