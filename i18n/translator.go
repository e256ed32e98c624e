// Package i18n renders Issue codes as human readable messages in English or
// Swedish, the two languages SGF files are exchanged in.
package i18n

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional parameters that are substituted for {name}
// placeholders (for example "depth_min" or "line").
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"syntax_error":                  "syntax error on line {line}",
		"coercion_fallback":             "value {value} of {code} kept as text",
		"unknown_encoding":              "unknown character encoding {encoding}",
		"depth_min_exceeds_drilled":     "depth_min {depth_min} is deeper than depth_max_drilled {depth_max_drilled}",
		"depth_out_of_range":            "depth {depth} lies outside the sounded range",
		"duplicate_investigation_point": "investigation point {investigation_point} occurs more than once",
		"depth_max_missing":             "depth_max is missing although the sounding stopped against rock",
		"dependency_unavailable":        "external dependency unavailable",
	},
	"sv": {
		"syntax_error":                  "syntaxfel på rad {line}",
		"coercion_fallback":             "värdet {value} för {code} behålls som text",
		"unknown_encoding":              "okänd teckenkodning {encoding}",
		"depth_min_exceeds_drilled":     "depth_min {depth_min} är djupare än depth_max_drilled {depth_max_drilled}",
		"depth_out_of_range":            "djupet {depth} ligger utanför sonderat intervall",
		"duplicate_investigation_point": "undersökningspunkten {investigation_point} förekommer flera gånger",
		"depth_max_missing":             "depth_max saknas trots att sonderingen stoppade mot berg",
		"dependency_unavailable":        "extern tjänst otillgänglig",
	},
}

// Languages lists the built-in languages.
func Languages() []string {
	out := make([]string, 0, len(dictionaries))
	for l := range dictionaries {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		if msg, ok = dictionaries["en"][code]; !ok {
			return code
		}
	}
	return expand(msg, data)
}

// expand substitutes {name} placeholders. Unknown placeholders are dropped
// together with a single preceding space.
func expand(msg string, data map[string]string) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(msg, '{')
		if i < 0 {
			break
		}
		j := strings.IndexByte(msg[i:], '}')
		if j < 0 {
			break
		}
		v, ok := data[msg[i+1:i+j]]
		head := msg[:i]
		if !ok {
			head = strings.TrimSuffix(head, " ")
		}
		b.WriteString(head)
		b.WriteString(v)
		msg = msg[i+j+1:]
	}
	b.WriteString(msg)
	return b.String()
}

var current atomic.Pointer[Translator]

func init() { SetTranslator(nil) }

// SetLanguage switches the built-in Translator language ("en"/"sv"). Other
// values, including region suffixes like "sv_SE", select by their prefix
// and fall back to English.
func SetLanguage(lang string) {
	lang = strings.ToLower(lang)
	if i := strings.IndexAny(lang, "_-."); i >= 0 {
		lang = lang[:i]
	}
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	var tr Translator = dictTranslator{lang: lang}
	current.Store(&tr)
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&tr)
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return (*current.Load()).Message(code, data) }

// Params stringifies structured issue parameters for T.
func Params(p map[string]any) map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = fmt.Sprint(v)
	}
	return out
}
