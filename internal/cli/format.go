package cli

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"
)

// formatCell flattens a value into a single cell. Lists are joined with
// listSep and nested records become key=value pairs.
func formatCell(v any, listSep string) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	case []string:
		return strings.Join(val, listSep)
	case Record:
		parts := make([]string, len(val))
		for i, f := range val {
			parts[i] = f.Key + "=" + formatCell(f.Value, listSep)
		}
		return strings.Join(parts, listSep)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + formatCell(val[k], listSep)
		}
		return strings.Join(parts, listSep)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = formatCell(rv.Index(i).Interface(), listSep)
		}
		return strings.Join(parts, listSep)
	case reflect.Struct, reflect.Map:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	case reflect.Ptr:
		if rv.IsNil() {
			return ""
		}
		return formatCell(rv.Elem().Interface(), listSep)
	default:
		return fmt.Sprint(v)
	}
}

// humanize turns a camelCase record key into a column title: "currentStatus"
// becomes "Current Status".
func humanize(key string) string {
	var b strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r) && !unicode.IsUpper(runes[i-1]):
			b.WriteRune(' ')
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
