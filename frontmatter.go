package marq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// frontMatter is a metadata block found at the start of a buffer.
type frontMatter struct {
	delim []byte
	body  []byte
	// offset of the first byte after the closing delimiter line
	end int
	rng Range
}

// splitFrontMatter detects a ---, +++ or ;;; delimited block at the start of
// src. The block is only accepted when its first line looks like metadata and
// a closing delimiter exists.
func splitFrontMatter(src []byte) (frontMatter, bool) {
	openLine, openNext, ok := frontMatterLine(src, 0)
	if !ok {
		return frontMatter{}, false
	}
	delim, isFrontMatter := parseOpeningFrontMatterDelimiter(openLine)
	if !isFrontMatter {
		return frontMatter{}, false
	}
	secondLine, _, ok := frontMatterLine(src, openNext)
	if !ok || !frontMatterMetadataLikely(secondLine) {
		return frontMatter{}, false
	}
	closeStart, closeNext, found := findClosingFrontMatterDelimiter(src, openNext, delim)
	if !found {
		return frontMatter{}, false
	}
	var c cursor
	c.reset(src, 0)
	begin := c.pos()
	c.advanceTo(closeNext)
	return frontMatter{
		delim: delim,
		body:  src[openNext:closeStart],
		end:   closeNext,
		rng:   Range{Begin: begin, End: c.pos()},
	}, true
}

// decode unmarshals the block by delimiter: YAML, TOML or JSON.
func (fm frontMatter) decode() (map[string]any, error) {
	out := map[string]any{}
	var err error
	switch string(fm.delim) {
	case "---":
		err = yaml.Unmarshal(fm.body, &out)
	case "+++":
		err = toml.Unmarshal(fm.body, &out)
	case ";;;":
		err = json.Unmarshal(fm.body, &out)
	}
	if err != nil {
		return nil, fmt.Errorf("front matter %s: %w", fm.delim, err)
	}
	return out, nil
}

// frontMatterAttrs flattens decoded metadata into sorted attributes with
// dotted keys for nested tables.
func frontMatterAttrs(m map[string]any) []Attr {
	var attrs []Attr
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		switch val := v.(type) {
		case map[string]any:
			for k, inner := range val {
				walk(joinKey(prefix, k), inner)
			}
		case []any:
			for i, inner := range val {
				walk(joinKey(prefix, strconv.Itoa(i)), inner)
			}
		default:
			attrs = append(attrs, Attr{Key: prefix, Value: scalarString(val)})
		}
	}
	walk("", m)
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	return attrs
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

func frontMatterLine(src []byte, start int) ([]byte, int, bool) {
	if start >= len(src) {
		return nil, 0, false
	}
	i := bytes.IndexByte(src[start:], '\n')
	if i < 0 {
		return trimCR(src[start:]), len(src), true
	}
	lineEnd := start + i
	return trimCR(src[start:lineEnd]), lineEnd + 1, true
}

func parseOpeningFrontMatterDelimiter(line []byte) ([]byte, bool) {
	trimmed := bytes.TrimSpace(trimBOM(line))
	switch {
	case bytes.Equal(trimmed, []byte("---")):
		return []byte("---"), true
	case bytes.Equal(trimmed, []byte("+++")):
		return []byte("+++"), true
	case bytes.Equal(trimmed, []byte(";;;")):
		return []byte(";;;"), true
	default:
		return nil, false
	}
}

func frontMatterMetadataLikely(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return false
	}
	if bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("[")) {
		return true
	}
	return bytes.Contains(trimmed, []byte(":")) || bytes.Contains(trimmed, []byte("="))
}

// findClosingFrontMatterDelimiter returns the start of the closing delimiter
// line and the offset just past it.
func findClosingFrontMatterDelimiter(src []byte, start int, delim []byte) (int, int, bool) {
	for idx := start; idx < len(src); {
		line, next, ok := frontMatterLine(src, idx)
		if !ok {
			return 0, 0, false
		}
		if bytes.Equal(bytes.TrimSpace(line), delim) {
			return idx, next, true
		}
		idx = next
	}
	return 0, 0, false
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}
