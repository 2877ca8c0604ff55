// Package result turns stored analysis records into the shape clients render.
//
// Several record fields have been stored as plain text, as sequences and as
// mappings across schema revisions. ParseVariant tags the stored shape once at
// the boundary; Skills and Lines then reduce any shape to an ordered []string.
package result

import (
	"strings"

	"github.com/tidwall/gjson"
)

type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "empty"
	}
}

type Entry struct {
	Key   string
	Value gjson.Result
}

type Variant struct {
	Kind  Kind
	Text  string
	Items []gjson.Result
	Pairs []Entry
}

func ParseVariant(raw []byte) Variant {
	if len(raw) == 0 {
		return Variant{Kind: KindEmpty}
	}
	if !gjson.ValidBytes(raw) {
		return textVariant(string(raw))
	}

	parsed := gjson.ParseBytes(raw)
	switch {
	case parsed.IsArray():
		items := parsed.Array()
		if len(items) == 0 {
			return Variant{Kind: KindEmpty}
		}
		return Variant{Kind: KindList, Items: items}
	case parsed.IsObject():
		var pairs []Entry
		parsed.ForEach(func(key, value gjson.Result) bool {
			pairs = append(pairs, Entry{Key: key.String(), Value: value})
			return true
		})
		if len(pairs) == 0 {
			return Variant{Kind: KindEmpty}
		}
		return Variant{Kind: KindMap, Pairs: pairs}
	case parsed.Type == gjson.Null:
		return Variant{Kind: KindEmpty}
	default:
		return textVariant(parsed.String())
	}
}

func textVariant(s string) Variant {
	s = strings.TrimSpace(s)
	if s == "" {
		return Variant{Kind: KindEmpty}
	}
	return Variant{Kind: KindText, Text: s}
}

// Skills reads the variant as a set of skill names: list items, map keys (entries
// whose value is false or null are skipped) or comma separated text.
func (v Variant) Skills() []string {
	var out []string
	switch v.Kind {
	case KindList:
		for _, item := range v.Items {
			out = append(out, itemText(item))
		}
	case KindMap:
		for _, p := range v.Pairs {
			if p.Value.Type == gjson.False || p.Value.Type == gjson.Null {
				continue
			}
			out = append(out, p.Key)
		}
	case KindText:
		out = strings.FieldsFunc(v.Text, func(r rune) bool {
			return r == ',' || r == ';' || r == '\n'
		})
	}
	return dedupe(out)
}

// Lines reads the variant as ordered statements: list items, map values (or the
// key when the value is just a flag) or the non-empty lines of a text.
func (v Variant) Lines() []string {
	var out []string
	switch v.Kind {
	case KindList:
		for _, item := range v.Items {
			out = append(out, itemText(item))
		}
	case KindMap:
		for _, p := range v.Pairs {
			switch p.Value.Type {
			case gjson.True:
				out = append(out, p.Key)
			case gjson.False, gjson.Null:
			default:
				out = append(out, itemText(p.Value))
			}
		}
	case KindText:
		for _, line := range strings.Split(v.Text, "\n") {
			out = append(out, strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		}
	}
	return compact(out)
}

// itemText flattens nested objects such as {"title": ..., "explanation": ...}
// into "title: explanation".
func itemText(r gjson.Result) string {
	if !r.IsObject() && !r.IsArray() {
		return strings.TrimSpace(r.String())
	}
	var parts []string
	r.ForEach(func(_, value gjson.Result) bool {
		if s := itemText(value); s != "" {
			parts = append(parts, s)
		}
		return true
	})
	return strings.Join(parts, ": ")
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range compact(in) {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
