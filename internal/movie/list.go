package movie

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// EncodeList serializes a string list as a JSON array with "[a, b]"
// spacing, which older dataset files use.
func EncodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	encoded := make([]string, 0, len(items))
	for _, item := range items {
		buf.Reset()
		if err := enc.Encode(item); err != nil {
			return "[]"
		}
		encoded = append(encoded, strings.TrimSuffix(buf.String(), "\n"))
	}
	return "[" + strings.Join(encoded, ", ") + "]"
}

// DecodeList parses a list cell. JSON arrays and quoted literal lists such as
// ['Action', "Schindler's List"] are accepted; an empty cell is an empty list.
func DecodeList(cell string) ([]string, error) {
	cell = strings.TrimSpace(cell)
	if nullable(cell) == "" {
		return []string{}, nil
	}

	var items []string
	if err := json.Unmarshal([]byte(cell), &items); err == nil {
		if items == nil {
			items = []string{}
		}
		return items, nil
	}
	return parseLiteralList(cell)
}

func parseLiteralList(cell string) ([]string, error) {
	if !strings.HasPrefix(cell, "[") || !strings.HasSuffix(cell, "]") {
		return nil, eris.Errorf("not a list: %q", cell)
	}

	items := []string{}
	s := cell[1 : len(cell)-1]
	i := 0
	for {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			return items, nil
		}

		quote := s[i]
		if quote != '\'' && quote != '"' {
			return nil, eris.Errorf("unquoted list item at offset %d in %q", i+1, cell)
		}
		i++

		var item strings.Builder
		closed := false
		for i < len(s) {
			c := s[i]
			if c == '\\' && i+1 < len(s) {
				switch next := s[i+1]; next {
				case 'n':
					item.WriteByte('\n')
				case 't':
					item.WriteByte('\t')
				default:
					item.WriteByte(next)
				}
				i += 2
				continue
			}
			if c == quote {
				closed = true
				i++
				break
			}
			item.WriteByte(c)
			i++
		}
		if !closed {
			return nil, eris.Errorf("unterminated string in %q", cell)
		}
		items = append(items, item.String())

		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			return items, nil
		}
		if s[i] != ',' {
			return nil, eris.Errorf("expected ',' at offset %d in %q", i+1, cell)
		}
		i++
	}
}
