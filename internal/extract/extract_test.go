package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstOf_FirstSuccessWins(t *testing.T) {
	var calls []string
	strategy := func(name, v string, ok bool) Strategy[string] {
		return Strategy[string]{Name: name, Extract: func(string) (string, bool) {
			calls = append(calls, name)
			return v, ok
		}}
	}

	v, name, ok := FirstOf("src",
		strategy("miss", "", false),
		strategy("blank", "   ", true),
		strategy("hit", " value ", true),
		strategy("never", "other", true),
	)

	assert.True(t, ok)
	assert.Equal(t, "value", v)
	assert.Equal(t, "hit", name)
	assert.Equal(t, []string{"miss", "blank", "hit"}, calls)
}

func TestFirstOf_AllMiss(t *testing.T) {
	v, name, ok := FirstOf[int](1, Strategy[int]{Name: "x", Extract: func(int) (string, bool) { return "", false }})

	assert.False(t, ok)
	assert.Empty(t, v)
	assert.Empty(t, name)
	assert.Empty(t, Value[int](1))
}

func TestLines_BreaksOnBlocks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div id="card">
			<h4>Automation   Specialist</h4>
			<p>Jane <b>Cruz</b> • Posted on Oct 14, 2026</p>
			<script>var x = 1;</script>
			<div><span>Full Time</span><br><span>$800</span></div>
		</div>`))
	require.NoError(t, err)

	lines := Lines(doc.Find("#card"))

	assert.Equal(t, []string{
		"Automation Specialist",
		"Jane Cruz • Posted on Oct 14, 2026",
		"Full Time",
		"$800",
	}, lines)
	assert.Equal(t, "Automation Specialist Jane Cruz • Posted on Oct 14, 2026 Full Time $800",
		CollapseSpace(strings.Join(lines, " ")))
}
