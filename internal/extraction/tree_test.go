package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTree_Basic(t *testing.T) {
	root, err := parseTree(`<doc a="1"><child>hello</child><child>world</child></doc>`)
	require.NoError(t, err)

	assert.Equal(t, "doc", root.Name)

	v, ok := root.Attr("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	children := root.ChildrenNamed("child")
	require.Len(t, children, 2)

	text, ok := children[0].Text()
	assert.True(t, ok)
	assert.Equal(t, "hello", text)
}

func TestParseTree_OrderPreserved(t *testing.T) {
	root, err := parseTree(`<doc><c>1</c><other/><c>2</c><c>3</c></doc>`)
	require.NoError(t, err)

	var texts []string
	for _, c := range root.ChildrenNamed("c") {
		text, _ := c.Text()
		texts = append(texts, text)
	}
	assert.Equal(t, []string{"1", "2", "3"}, texts)
}

func TestFirst_MissingLinkIsAbsent(t *testing.T) {
	root, err := parseTree(`<doc><a><b>x</b></a></doc>`)
	require.NoError(t, err)

	_, ok := root.First("a", "missing", "b")
	assert.False(t, ok)

	text, ok := root.TextAt("a", "b")
	assert.True(t, ok)
	assert.Equal(t, "x", text)

	_, ok = root.TextAt("a", "b", "c")
	assert.False(t, ok)
}

func TestNilNodeLookupsAreAbsent(t *testing.T) {
	var n *Node

	_, ok := n.First("x")
	assert.False(t, ok)
	_, ok = n.Attr("x")
	assert.False(t, ok)
	_, ok = n.Text()
	assert.False(t, ok)
	_, ok = n.TextAt("x")
	assert.False(t, ok)
	assert.Nil(t, n.ChildrenNamed("x"))
}

func TestDeepText_FlattensInlineMarkup(t *testing.T) {
	root, err := parseTree(`<title>A <b>bold</b> invention</title>`)
	require.NoError(t, err)

	text, ok := root.DeepText()
	assert.True(t, ok)
	assert.Equal(t, "A bold invention", text)
}

func TestAttr_EmptyValueIsAbsent(t *testing.T) {
	root, err := parseTree(`<doc a="" b="  "/>`)
	require.NoError(t, err)

	_, ok := root.Attr("a")
	assert.False(t, ok)
	_, ok = root.Attr("b")
	assert.False(t, ok)
}

func TestParseTree_MalformedMarkup(t *testing.T) {
	_, err := parseTree(`<doc><<<not xml`)
	assert.Error(t, err)

	_, err = parseTree("")
	assert.Error(t, err)
}
