package cssval

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineOutput renders a payload in the validator's usual JSON framing.
func engineOutput(t *testing.T, errs, warns []map[string]any) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"cssvalidation": map[string]any{
			"validity": len(errs) == 0,
			"errors":   errs,
			"warnings": warns,
		},
	})
	require.NoError(t, err)
	return string(data)
}

func sourceURI(path string) string {
	return "file:" + filepath.ToSlash(path)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantOK bool
		wantKV string // key expected in the decoded object
	}{
		{name: "plain object", text: `{"a": 1}`, wantOK: true, wantKV: "a"},
		{name: "log lines around object", text: "Starting validator\n{\"a\": {\"b\": 2}}\nDone.\n", wantOK: true, wantKV: "a"},
		{name: "no braces", text: "java.lang.OutOfMemoryError", wantOK: false},
		{name: "closing brace before opening", text: "} {", wantOK: false},
		{name: "malformed object", text: `{"a": }`, wantOK: false},
		{name: "two objects", text: `{"a": 1} {"b": 2}`, wantOK: false},
		{name: "empty", text: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, ok := ExtractJSON(tt.text)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Contains(t, obj, tt.wantKV)
			}
		})
	}
}

func TestExtractPayloadChannelOrder(t *testing.T) {
	t.Run("stdout wins", func(t *testing.T) {
		obj, err := extractPayload(`{"from": "stdout"}`, `{"from": "stderr"}`)
		require.NoError(t, err)
		assert.Equal(t, "stdout", obj["from"])
	})

	t.Run("stderr when stdout has none", func(t *testing.T) {
		obj, err := extractPayload("no json here", `{"from": "stderr"}`)
		require.NoError(t, err)
		assert.Equal(t, "stderr", obj["from"])
	})

	t.Run("object split across channels", func(t *testing.T) {
		obj, err := extractPayload(`{"cssvalidation": {"errors": [`, `]}}`)
		require.NoError(t, err)
		assert.Contains(t, obj, "cssvalidation")
	})

	t.Run("nothing anywhere", func(t *testing.T) {
		_, err := extractPayload("", "Error: Unable to access jarfile")
		require.ErrorIs(t, err, ErrNoStructuredOutput)
	})
}

func TestNormalizeAttribution(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.css")
	imported := filepath.Join(dir, "vendor.css")

	out := engineOutput(t, []map[string]any{
		{"source": sourceURI(file), "line": 3, "message": "Parse Error"},
		{"source": sourceURI(imported), "line": 1, "message": "Imported error"},
		{"line": 7, "message": "No source"},
		{"source": "https://example.com/remote.css", "line": 2, "message": "Remote"},
	}, nil)

	errs, warns, err := Normalize(ProcessOutput{Stdout: out}, file, true, false, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, warns)

	require.Len(t, errs, 2)
	assert.Equal(t, "Parse Error", errs[0].Message)
	assert.Equal(t, "No source", errs[1].Message)
}

func TestNormalizeEncodedSourcePath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "my styles", "app #1.css")
	encoded := "file://" + strings.NewReplacer(" ", "%20", "#", "%23").Replace(filepath.ToSlash(file))
	if !strings.HasPrefix(encoded, "file:///") {
		encoded = "file:///" + strings.TrimPrefix(encoded, "file://")
	}

	out := engineOutput(t, []map[string]any{
		{"source": encoded, "line": 1, "message": "Encoded"},
	}, nil)

	errs, _, err := Normalize(ProcessOutput{Stdout: out}, file, true, false, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "Encoded", errs[0].Message)
}

func TestNormalizeToleratedProperty(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.css")
	out := engineOutput(t, []map[string]any{
		{"source": sourceURI(file), "line": 2, "message": "Property “zoom” doesn't exist : "},
		{"source": sourceURI(file), "line": 4, "message": "Value Error : color"},
	}, []map[string]any{
		{"source": sourceURI(file), "line": 9, "message": "Same color for background-color and color"},
	})

	config := DefaultConfig()
	config.Tolerate = []string{"ZOOM"}

	t.Run("downgraded when warnings included", func(t *testing.T) {
		errs, warns, err := Normalize(ProcessOutput{Stdout: out}, file, true, false, config)
		require.NoError(t, err)

		require.Len(t, errs, 1)
		assert.Equal(t, "Value Error : color", errs[0].Message)

		require.Len(t, warns, 2)
		assert.Equal(t, Diagnostic{Line: 2, Message: "Property “zoom” doesn't exist", Severity: SeverityWarning}, warns[0])
		assert.Equal(t, 9, warns[1].Line)
	})

	t.Run("dropped when warnings excluded", func(t *testing.T) {
		errs, warns, err := Normalize(ProcessOutput{Stdout: out}, file, false, false, config)
		require.NoError(t, err)
		require.Len(t, errs, 1)
		assert.Empty(t, warns)
	})

	t.Run("kept as error when not tolerated", func(t *testing.T) {
		errs, _, err := Normalize(ProcessOutput{Stdout: out}, file, true, false, DefaultConfig())
		require.NoError(t, err)
		require.Len(t, errs, 2)
		assert.Equal(t, SeverityError, errs[0].Severity)
		assert.Equal(t, "Property “zoom” doesn't exist", errs[0].Message)
	})
}

func TestNormalizeDeprecations(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.css")
	out := engineOutput(t, nil, []map[string]any{
		{"source": sourceURI(file), "line": 1, "message": "clip is deprecated", "type": "deprecated"},
		{"source": sourceURI(file), "line": 2, "message": "Redefinition of color", "type": "redefinition"},
	})

	_, warns, err := Normalize(ProcessOutput{Stdout: out}, file, true, false, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "Redefinition of color", warns[0].Message)

	_, warns, err = Normalize(ProcessOutput{Stdout: out}, file, true, true, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, warns, 2)
	assert.Equal(t, "clip is deprecated", warns[0].Message)
}

func TestNormalizeSchemaVariants(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.css")
	uri := sourceURI(file)

	tests := []struct {
		name    string
		payload string
		want    Diagnostic
	}{
		{
			name:    "top-level arrays",
			payload: `{"errors": [{"source": "` + uri + `", "line": 5, "column": 3, "message": "Top"}]}`,
			want:    Diagnostic{Line: 5, Column: 3, Message: "Top", Severity: SeverityError},
		},
		{
			name:    "capitalized wrapper and alternate keys",
			payload: `{"CSSValidation": {"errorlist": [{"uri": "` + uri + `", "lineNumber": "6", "col": 2, "msg": "Alt:"}]}}`,
			want:    Diagnostic{Line: 6, Column: 2, Message: "Alt", Severity: SeverityError},
		},
		{
			name:    "malformed numbers default to zero",
			payload: `{"validation": {"errors": [{"file": "` + uri + `", "line": "n/a", "column": -4, "text": "Bad position"}]}}`,
			want:    Diagnostic{Message: "Bad position", Severity: SeverityError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, _, err := Normalize(ProcessOutput{Stdout: tt.payload}, file, true, false, DefaultConfig())
			require.NoError(t, err)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.want, errs[0])
		})
	}
}

func TestNormalizeMissingArrays(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.css")

	errs, warns, err := Normalize(ProcessOutput{Stdout: `{"cssvalidation": {"validity": true}}`}, file, true, false, DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, errs)
	assert.NotNil(t, warns)
	assert.Empty(t, errs)
	assert.Empty(t, warns)
}

func TestNormalizeKeepsEmissionOrder(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.css")
	out := engineOutput(t, []map[string]any{
		{"line": 30, "message": "third line first"},
		{"line": 2, "message": "second"},
		{"line": 2, "message": "second"},
	}, nil)

	errs, _, err := Normalize(ProcessOutput{Stdout: out}, file, true, false, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, errs, 3)
	assert.Equal(t, 30, errs[0].Line)
	assert.Equal(t, errs[1], errs[2])

	again, _, err := Normalize(ProcessOutput{Stdout: out}, file, true, false, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, errs, again)
}

func TestNormalizeNoStructuredOutput(t *testing.T) {
	_, _, err := Normalize(ProcessOutput{Stderr: "Error: Unable to access jarfile", ExitCode: 1}, "app.css", true, false, DefaultConfig())
	require.ErrorIs(t, err, ErrNoStructuredOutput)
}

func TestCleanMessage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Parse Error  ", want: "Parse Error"},
		{in: "Value Error : color :", want: "Value Error : color"},
		{in: "only one colon stripped ::", want: "only one colon stripped :"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMessage(tt.in))
		})
	}
}
