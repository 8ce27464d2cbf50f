package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedMode is returned by a mode-specific renderer to ask the
// dispatcher for the generic renderer instead.
var ErrUnsupportedMode = errors.New("output mode not supported by renderer")

// Output is a result that can be encoded in every output mode. Encoding is
// pure: the same Output, mode and theme always produce the same text.
type Output interface {
	Human(theme Theme) string
	JSON() (string, error)
	CSV() (string, error)
}

// Encode renders o in mode.
func Encode(o Output, mode OutputMode, theme Theme) (string, error) {
	switch mode {
	case OutputHuman:
		return o.Human(theme), nil
	case OutputJSON:
		return o.JSON()
	case OutputCSV:
		return o.CSV()
	default:
		return "", InternalError(fmt.Errorf("unknown output mode %q", mode))
	}
}

// Renderers turns an operation result of type R into text. Mode-specific
// renderers take precedence; All is the generic fallback used when the active
// mode has no renderer or its renderer returns ErrUnsupportedMode.
type Renderers[R any] struct {
	Human func(R, Theme) (string, error)
	JSON  func(R) (string, error)
	CSV   func(R) (string, error)
	All   func(R) (Output, error)
}

// Render dispatches result to the renderer for mode.
func (r Renderers[R]) Render(result R, mode OutputMode, theme Theme) (string, error) {
	var specific func(R) (string, error)
	switch mode {
	case OutputHuman:
		if r.Human != nil {
			specific = func(v R) (string, error) { return r.Human(v, theme) }
		}
	case OutputJSON:
		specific = r.JSON
	case OutputCSV:
		specific = r.CSV
	}

	if specific != nil {
		out, err := specific(result)
		if !errors.Is(err, ErrUnsupportedMode) {
			return out, err
		}
	}

	if r.All == nil {
		return "", InternalError(fmt.Errorf("no renderer for output mode %q", mode))
	}
	o, err := r.All(result)
	if err != nil {
		return "", err
	}
	return Encode(o, mode, theme)
}

// responseOutput is a message with optional data and next steps.
type responseOutput struct {
	message string
	data    Record
	hints   []Hint
}

// Response creates an Output carrying a message, optional data and hints.
// The message may contain highlight markup.
func Response(message string, data Record, hints ...Hint) Output {
	return responseOutput{message: message, data: data, hints: hints}
}

// Message creates an Output carrying only a message.
func Message(message string, hints ...Hint) Output {
	return responseOutput{message: message, hints: hints}
}

func (o responseOutput) Human(theme Theme) string {
	var sb strings.Builder
	sb.WriteString(theme.Expand(o.message))
	if len(o.hints) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(renderNextSteps(o.hints, theme))
	}
	return sb.String()
}

func (o responseOutput) JSON() (string, error) {
	env := Envelope{
		Code:      ExitCodeSuccess,
		Message:   StripMarkup(o.message),
		NextSteps: plainHints(o.hints),
	}
	if o.data != nil {
		env.Data = o.data
	}
	return encodeJSON(env)
}

func (o responseOutput) CSV() (string, error) {
	header := append([]string{"code", "message"}, o.data.Keys()...)
	row := append([]string{strconv.Itoa(ExitCodeSuccess), StripMarkup(o.message)}, recordCells(o.data, o.data.Keys())...)
	return encodeCSV(header, [][]string{row})
}

// valueOutput is a raw value with no message.
type valueOutput struct {
	value any
}

// Value creates an Output for a single raw value, such as one attribute
// selected with --key. Its JSON envelope carries no message.
func Value(v any) Output {
	return valueOutput{value: v}
}

func (o valueOutput) Human(theme Theme) string {
	return formatCell(o.value, "\n")
}

func (o valueOutput) JSON() (string, error) {
	return encodeJSON(dataEnvelope{Code: ExitCodeSuccess, Data: o.value})
}

func (o valueOutput) CSV() (string, error) {
	return encodeCSV([]string{"code", "data"}, [][]string{{strconv.Itoa(ExitCodeSuccess), formatCell(o.value, csvListSep)}})
}

// tableOutput is a list of records sharing the same columns.
type tableOutput struct {
	keys  []string
	rows  []Record
	empty string
}

// Table creates an Output for a list of records. keys selects and orders
// the columns; empty is the human message shown when there are no rows.
func Table(keys []string, rows []Record, empty string) Output {
	if rows == nil {
		rows = []Record{}
	}
	return tableOutput{keys: keys, rows: rows, empty: empty}
}

func (o tableOutput) Human(theme Theme) string {
	if len(o.rows) == 0 && o.empty != "" {
		return theme.Expand(o.empty)
	}
	w := NewPlainTableWriter(theme)
	titles := make([]string, len(o.keys))
	for i, k := range o.keys {
		titles[i] = humanize(k)
	}
	w.SetHeaders(titles)
	for _, r := range o.rows {
		cells := make([]string, len(o.keys))
		for i, k := range o.keys {
			if v, ok := r.Get(k); ok {
				cells[i] = formatCell(v, ", ")
			}
		}
		w.AppendRow(cells)
	}
	return w.Render()
}

func (o tableOutput) JSON() (string, error) {
	rows := make([]Record, len(o.rows))
	for i, r := range o.rows {
		rows[i] = project(r, o.keys)
	}
	return encodeJSON(dataEnvelope{Code: ExitCodeSuccess, Data: rows})
}

func (o tableOutput) CSV() (string, error) {
	rows := make([][]string, len(o.rows))
	for i, r := range o.rows {
		rows[i] = recordCells(r, o.keys)
	}
	return encodeCSV(o.keys, rows)
}

// attributesOutput is a single record shown as property/value pairs.
type attributesOutput struct {
	record Record
}

// Attributes creates an Output for a single resource.
func Attributes(record Record) Output {
	if record == nil {
		record = Record{}
	}
	return attributesOutput{record: record}
}

func (o attributesOutput) Human(theme Theme) string {
	return renderAttributes(o.record, theme)
}

func (o attributesOutput) JSON() (string, error) {
	return encodeJSON(dataEnvelope{Code: ExitCodeSuccess, Data: o.record})
}

func (o attributesOutput) CSV() (string, error) {
	keys := o.record.Keys()
	return encodeCSV(keys, [][]string{recordCells(o.record, keys)})
}

// project returns the fields of r named by keys, in keys order.
func project(r Record, keys []string) Record {
	out := make(Record, 0, len(keys))
	for _, k := range keys {
		v, _ := r.Get(k)
		out = append(out, F(k, v))
	}
	return out
}

// renderNextSteps renders hints as a bullet list.
func renderNextSteps(hints []Hint, theme Theme) string {
	var sb strings.Builder
	sb.WriteString("Next steps:")
	for _, h := range hints {
		sb.WriteString("\n  - ")
		sb.WriteString(theme.Expand(h.Label))
		if h.Command != "" {
			sb.WriteString("\n      ")
			sb.WriteString(theme.paint(colorHighlight, h.Command))
		}
	}
	return sb.String()
}

// plainHints strips highlight markup from hint labels for machine-readable output.
func plainHints(hints []Hint) []Hint {
	if len(hints) == 0 {
		return nil
	}
	out := make([]Hint, len(hints))
	for i, h := range hints {
		out[i] = Hint{Label: StripMarkup(h.Label), Command: h.Command}
	}
	return out
}
