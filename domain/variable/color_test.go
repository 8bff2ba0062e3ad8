package variable

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHueColorer_ColorFor(t *testing.T) {
	c := NewHueColorer()
	hex := regexp.MustCompile(`^#[0-9a-f]{6}$`)

	assert.Regexp(t, hex, c.ColorFor("fooBar"))
	assert.Equal(t, c.ColorFor("fooBar"), c.ColorFor("FOOBAR"))
	assert.NotEqual(t, c.ColorFor("userName"), c.ColorFor("requestID"))
}
