package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeEnvelope parses rendered JSON back into generic values.
func decodeEnvelope(t *testing.T, out string) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	return got
}

// normalize round-trips v through JSON so it can be compared with decoded output.
func normalize(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestJSONRoundTrip(t *testing.T) {
	data := Record{F("tenantName", "acme"), F("wasCreated", true), F("regions", []string{"us-east1", "eu-west1"})}
	hints := []Hint{NewHint("Get information about the new tenant:", "cloudctl streaming get acme")}

	tests := []struct {
		name string
		out  Output
		want any
	}{
		{
			name: "response with data and hints",
			out:  Response("Tenant "+Highlight("acme")+" has been created.", data, hints...),
			want: Envelope{Code: 0, Message: "Tenant 'acme' has been created.", Data: data, NextSteps: hints},
		},
		{
			name: "message only",
			out:  Message("Nothing to do."),
			want: Envelope{Code: 0, Message: "Nothing to do."},
		},
		{
			name: "empty message is kept",
			out:  Response("", Record{F("wasCreated", false)}),
			want: Envelope{Code: 0, Message: "", Data: Record{F("wasCreated", false)}},
		},
		{
			name: "raw value has no message",
			out:  Value("ACTIVE"),
			want: dataEnvelope{Code: 0, Data: "ACTIVE"},
		},
		{
			name: "table",
			out:  Table([]string{"tenantName", "wasCreated"}, []Record{{F("tenantName", "a"), F("wasCreated", false)}}, ""),
			want: dataEnvelope{Code: 0, Data: []Record{{F("tenantName", "a"), F("wasCreated", false)}}},
		},
		{
			name: "empty table is an empty array",
			out:  Table([]string{"name"}, nil, "No databases found."),
			want: dataEnvelope{Code: 0, Data: []Record{}},
		},
		{
			name: "attributes",
			out:  Attributes(data),
			want: dataEnvelope{Code: 0, Data: data},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.out.JSON()
			require.NoError(t, err)
			assert.Equal(t, normalize(t, tt.want), decodeEnvelope(t, out))
		})
	}
}

func TestJSONMessagePresence(t *testing.T) {
	for _, o := range []Output{Message(""), Response("", nil)} {
		out, err := o.JSON()
		require.NoError(t, err)
		assert.Contains(t, decodeEnvelope(t, out), "message")
	}

	out, err := Value(false).JSON()
	require.NoError(t, err)
	got := decodeEnvelope(t, out)
	assert.NotContains(t, got, "message")
	assert.Equal(t, false, got["data"])
}

func TestJSONIsPrettyPrinted(t *testing.T) {
	out, err := Response("done", Record{F("a", 1)}).JSON()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{\n  \"code\": 0,"), out)
}

func TestJSONKeepsRecordOrder(t *testing.T) {
	out, err := Attributes(Record{F("zeta", 1), F("alpha", 2)}).JSON()
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "zeta"), strings.Index(out, "alpha"))
}

func TestJSONDoesNotEscapeHTML(t *testing.T) {
	out, err := Message("a <b> & c").JSON()
	require.NoError(t, err)
	assert.Contains(t, out, "a <b> & c")
}

func TestHumanOutput(t *testing.T) {
	t.Run("response with next steps", func(t *testing.T) {
		out := Response("Database "+Highlight("orders")+" is ready.", nil,
			NewHint("Get information about the new database:", "cloudctl db get orders")).Human(Theme{})

		assert.Equal(t, "Database 'orders' is ready.\n\nNext steps:\n  - Get information about the new database:\n      cloudctl db get orders", out)
	})

	t.Run("table", func(t *testing.T) {
		out := Table([]string{"name", "currentStatus"}, []Record{
			{F("name", "orders"), F("currentStatus", "ACTIVE")},
			{F("name", "a"), F("currentStatus", "PENDING")},
		}, "").Human(Theme{})

		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "NAME     CURRENT STATUS", lines[0])
		assert.Equal(t, "orders   ACTIVE", lines[1])
		assert.Equal(t, "a        PENDING", lines[2])
	})

	t.Run("empty table shows message", func(t *testing.T) {
		assert.Equal(t, "No databases found.", Table([]string{"name"}, nil, "No databases found.").Human(Theme{}))
	})

	t.Run("attributes", func(t *testing.T) {
		out := Attributes(Record{F("name", "orders"), F("regions", []string{"us-east1", "eu-west1"})}).Human(Theme{})
		assert.Contains(t, out, "ATTRIBUTE")
		assert.Contains(t, out, "orders")
		assert.Contains(t, out, "us-east1")
		assert.Contains(t, out, "eu-west1")
	})

	t.Run("value", func(t *testing.T) {
		assert.Equal(t, "us-east1\neu-west1", Value([]string{"us-east1", "eu-west1"}).Human(Theme{}))
	})
}

func TestRenderIsDeterministic(t *testing.T) {
	o := Table([]string{"a", "b"}, []Record{{F("a", 1), F("b", map[string]any{"y": 2, "x": 1})}}, "")
	for _, mode := range ValidOutputModes {
		first, err := Encode(o, mode, Theme{Color: true})
		require.NoError(t, err)
		second, err := Encode(o, mode, Theme{Color: true})
		require.NoError(t, err)
		assert.Equal(t, first, second, mode)
	}
}

func TestRenderersDispatch(t *testing.T) {
	generic := func(s string) (Output, error) { return Message("generic " + s), nil }

	t.Run("mode-specific renderer wins", func(t *testing.T) {
		r := Renderers[string]{
			Human: func(s string, _ Theme) (string, error) { return "human " + s, nil },
			All:   generic,
		}
		out, err := r.Render("x", OutputHuman, Theme{})
		require.NoError(t, err)
		assert.Equal(t, "human x", out)
	})

	t.Run("falls back to generic renderer when mode has none", func(t *testing.T) {
		r := Renderers[string]{
			Human: func(s string, _ Theme) (string, error) { return "human " + s, nil },
			All:   generic,
		}
		out, err := r.Render("x", OutputCSV, Theme{})
		require.NoError(t, err)
		assert.Equal(t, "code,message\n0,generic x\n", out)
	})

	t.Run("falls back on unsupported-mode signal", func(t *testing.T) {
		r := Renderers[string]{
			JSON: func(string) (string, error) { return "", ErrUnsupportedMode },
			All:  generic,
		}
		out, err := r.Render("x", OutputJSON, Theme{})
		require.NoError(t, err)
		assert.Equal(t, "generic x", decodeEnvelope(t, out)["message"])
	})

	t.Run("missing renderer is an internal error", func(t *testing.T) {
		r := Renderers[string]{
			Human: func(s string, _ Theme) (string, error) { return s, nil },
		}
		_, err := r.Render("x", OutputJSON, Theme{})
		assert.Equal(t, ExitCodeInternal, ExitCodeOf(err))
	})

	t.Run("renderer errors are returned unchanged", func(t *testing.T) {
		boom := NewError(CategoryValidation, "bad key")
		r := Renderers[string]{
			CSV: func(string) (string, error) { return "", boom },
			All: generic,
		}
		_, err := r.Render("x", OutputCSV, Theme{})
		assert.True(t, errors.Is(err, boom))
	})
}

func TestRenderError(t *testing.T) {
	err := NewError(CategoryAlreadyExists, "Tenant "+Highlight("acme")+" already exists.",
		NewHint("Example fix:", "cloudctl streaming create acme --if-not-exists"),
	).WithCause(errors.New("409 conflict"))

	t.Run("human", func(t *testing.T) {
		out := RenderError(err, OutputHuman, Theme{}, false)
		assert.Equal(t, "Error: Tenant 'acme' already exists.\n\nExample fix:\n  cloudctl streaming create acme --if-not-exists", out)
	})

	t.Run("human verbose shows cause", func(t *testing.T) {
		assert.Contains(t, RenderError(err, OutputHuman, Theme{}, true), "Cause: 409 conflict")
	})

	t.Run("json", func(t *testing.T) {
		got := decodeEnvelope(t, RenderError(err, OutputJSON, Theme{}, false))
		assert.Equal(t, float64(ExitCodeAlreadyExists), got["code"])
		assert.Equal(t, "Tenant 'acme' already exists.", got["message"])
		assert.NotContains(t, got, "data")
		assert.Len(t, got["nextSteps"], 1)
	})

	t.Run("csv", func(t *testing.T) {
		assert.Equal(t, "code,message\n4,Tenant 'acme' already exists.\n", RenderError(err, OutputCSV, Theme{}, false))
	})
}
