package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceReferences(t *testing.T) {
	links := []string{"https://support.apple.com/a", "https://support.hp.com/b"}

	got := ReplaceReferences("Reset the SMC [reference:1] and update the BIOS [reference:2].", links)
	assert.Equal(t,
		"Reset the SMC [<sup>1</sup>](https://support.apple.com/a) and update the BIOS [<sup>2</sup>](https://support.hp.com/b).",
		got)
}

func TestReplaceReferencesToleratesVariants(t *testing.T) {
	links := []string{"https://a"}

	assert.Equal(t, "[<sup>1</sup>](https://a)", ReplaceReferences("[Reference: 1]", links))
	assert.Equal(t, "[<sup>1</sup>](https://a)", ReplaceReferences("[reference: 1]", links))
	assert.Equal(t, "[<sup>1</sup>](https://a)", ReplaceReferences("[REFERENCE:1]", links))
}

func TestReplaceReferencesOutOfRange(t *testing.T) {
	got := ReplaceReferences("See [reference:7] for details.", []string{"https://a"})
	assert.Equal(t, "See [<sup>7</sup>](#) for details.", got)
}

func TestReplaceReferencesLeavesPlainText(t *testing.T) {
	text := "No citations here, just [brackets] and reference to nothing."
	assert.Equal(t, text, ReplaceReferences(text, []string{"https://a"}))
}

func TestRenumberCitations(t *testing.T) {
	allURLs := []string{"https://a", "https://b", "https://c"}
	// Only the third indexed page was used, so its citation should
	// become number one.
	answer := "Do the thing [<sup>3</sup>](https://c)."
	got := RenumberCitations(answer, allURLs, []string{"https://c"})
	assert.Equal(t, "Do the thing [<sup>1</sup>](https://c).", got)
}

func TestRenumberCitationsMultipleSources(t *testing.T) {
	allURLs := []string{"https://a", "https://b", "https://c"}
	answer := "First [<sup>2</sup>](https://b), then [<sup>3</sup>](https://c)."
	got := RenumberCitations(answer, allURLs, []string{"https://b", "https://c"})
	assert.Equal(t, "First [<sup>1</sup>](https://b), then [<sup>2</sup>](https://c).", got)
}

func TestRestrictToOfficialSites(t *testing.T) {
	got := RestrictToOfficialSites("screen flickering", []string{"support.hp.com", "tomshardware.com"})
	assert.Equal(t, "screen flickering (site:support.hp.com OR site:tomshardware.com)", got)

	assert.Equal(t, "plain query", RestrictToOfficialSites("plain query", nil))
}
