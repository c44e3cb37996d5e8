//go:build !windows

package cssval

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeSourcePath(t *testing.T) {
	cwd, err := filepath.Abs(".")
	require.NoError(t, err)

	tests := []struct {
		name   string
		source string
		want   string
		wantOK bool
	}{
		{name: "triple slash", source: "file:///srv/app/main.css", want: "/srv/app/main.css", wantOK: true},
		{name: "single slash", source: "file:/srv/app/main.css", want: "/srv/app/main.css", wantOK: true},
		{name: "localhost", source: "file://localhost/srv/app/main.css", want: "/srv/app/main.css", wantOK: true},
		{name: "upper case scheme", source: "FILE:///srv/app/main.css", want: "/srv/app/main.css", wantOK: true},
		{name: "percent encoded", source: "file:///srv/my%20app/a%23b.css", want: "/srv/my app/a#b.css", wantOK: true},
		{name: "dot segments", source: "file:///srv/app/../lib/./x.css", want: "/srv/lib/x.css", wantOK: true},
		{name: "plain absolute path", source: "/srv/app/main.css", want: "/srv/app/main.css", wantOK: true},
		{name: "plain relative path", source: "styles/main.css", want: filepath.Join(cwd, "styles/main.css"), wantOK: true},
		{name: "http source", source: "http://example.com/main.css", wantOK: false},
		{name: "data uri", source: "data:text/css,a{}", wantOK: false},
		{name: "blank", source: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeSourcePath(tt.source)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAttributedTo(t *testing.T) {
	file := "/srv/app/main.css"

	require.True(t, attributedTo("", file))
	require.True(t, attributedTo("file:/srv/app/main.css", file))
	require.False(t, attributedTo("file:/srv/app/other.css", file))
	require.False(t, attributedTo("https://cdn.example.com/main.css", file))
}
