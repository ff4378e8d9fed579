package pathglob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Match(t *testing.T) {
	t.Parallel()

	s, err := Compile([]string{"**/*.java", "**/test/**", "vendor/**", "*.min.js"})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"Main.java", true},
		{"src/com/shop/Order.java", true},
		{"test/helpers.py", true},
		{"pkg/test/helpers.py", true},
		{"vendor/lib/a.php", true},
		{"app.min.js", true},
		{"src/app.py", false},
		{"contest/a.py", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Match(tt.path), tt.path)
	}

	assert.True(t, s.MatchDir("vendor"))
	assert.False(t, s.MatchDir("src"))
	assert.Equal(t, 4, s.Len())
}

func TestSet_Empty(t *testing.T) {
	t.Parallel()

	var s *Set
	assert.False(t, s.Match("a"))
	assert.Zero(t, s.Len())
	assert.False(t, MustCompile(nil).Match("a.java"))
}
