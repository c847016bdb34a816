package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePage = `<html><body>
<fieldset id="block">
	<label>Sites</label>
	<div class="val" data-code="lfpg">Paris CDG</div>
	<div class="val">Paris Orly</div>
	<label>Champs</label>
	<div><span>nested</span> text</div>
</fieldset>
</body></html>`

func TestNodeSelection(t *testing.T) {
	doc, err := NewDocument(strings.NewReader(fixturePage))
	require.NoError(t, err)

	first := doc.SelectSingle("div.val")
	require.NotNil(t, first)
	assert.Equal(t, "Paris CDG", TextOf(first))
	assert.Equal(t, "lfpg", first.Attr("data-code"))
	assert.Equal(t, "", first.Attr("missing"))

	assert.Len(t, doc.SelectAll("div.val"), 2)
	assert.Nil(t, doc.SelectSingle("table"))
	assert.Empty(t, doc.SelectAll("table td"))
}

func TestNodeChildScope(t *testing.T) {
	doc, err := NewDocument(strings.NewReader(fixturePage))
	require.NoError(t, err)

	block := doc.SelectSingle("fieldset#block")
	require.NotNil(t, block)

	// "> div" skips the span nested inside the last div
	assert.Len(t, block.SelectAll("> div"), 3)
	assert.Len(t, block.SelectAll("> span"), 0)
	assert.Len(t, block.SelectAll("span"), 1)
}

func TestNodeSiblingWalk(t *testing.T) {
	doc, err := NewDocument(strings.NewReader(fixturePage))
	require.NoError(t, err)

	label := doc.SelectSingle("label")
	require.NotNil(t, label)
	assert.True(t, label.Is("label"))
	assert.False(t, label.Is("div"))

	var values []string
	for node := label.Next(); node != nil; node = node.Next() {
		if node.Is("label") {
			break
		}
		values = append(values, TextOf(node))
	}
	assert.Equal(t, []string{"Paris CDG", "Paris Orly"}, values)
}

func TestNewFragment(t *testing.T) {
	doc, err := NewFragment("<p class=\"status1\">Validé</p>")
	require.NoError(t, err)
	assert.NotNil(t, doc.SelectSingle("p.status1"))
}

func TestTextOfNil(t *testing.T) {
	assert.Equal(t, "", TextOf(nil))
}

func TestNth(t *testing.T) {
	doc, err := NewDocument(strings.NewReader(fixturePage))
	require.NoError(t, err)

	nodes := doc.SelectAll("div.val")
	require.Len(t, nodes, 2)
	assert.Equal(t, "Paris Orly", TextOf(Nth(nodes, 1)))
	assert.Nil(t, Nth(nodes, 2))
	assert.Nil(t, Nth(nodes, -1))
}
