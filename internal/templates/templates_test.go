package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSubstitution(t *testing.T) {
	s := MustLoad()

	out, err := s.Render("activity-row", Data{"date": "2024-05-01", "activity": "Form sent", "status": "sent"})
	require.NoError(t, err)
	assert.Equal(t, "  2024-05-01  Form sent  sent\n", out)

	out, err = s.Render("activity-row", Data{"activity": "Form sent"})
	require.NoError(t, err)
	assert.Equal(t, "    Form sent  \n", out)
	assert.NotContains(t, out, "<no value>")
}

func TestRenderNilData(t *testing.T) {
	s := MustLoad()
	out, err := s.Render("report", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Total")
	assert.NotContains(t, out, "<no value>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	s := MustLoad()
	_, err := s.Render("nope", nil)
	assert.EqualError(t, err, "template not found: nope")
	assert.False(t, s.Has("nope"))
}

func TestRenderList(t *testing.T) {
	s := MustLoad()

	out, err := s.RenderList("empty-row", nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = s.RenderList("empty-row", []Data{{"message": "a"}, {"message": "b"}})
	require.NoError(t, err)
	assert.Equal(t, "  a\n  b\n", out)
}

func TestPageTemplatesExist(t *testing.T) {
	s := MustLoad()
	for _, name := range []string{"base", "login", "register", "dashboard", "forms", "recipients", "tracking", "extraction", "settings"} {
		assert.True(t, s.Has(name), name)
	}
}
