package assistant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// referencePattern matches the citation markers the LLM is prompted to
// emit, tolerating spacing and capitalization drift: [reference:3],
// [Reference: 3] and so on.
var referencePattern = regexp.MustCompile(`(?i)\[reference: ?(\d+)\]`)

// ReplaceReferences rewrites [reference:n] markers into markdown
// superscript links pointing at the n-th entry of links. Markers whose
// number has no corresponding link keep the number but link to "#".
func ReplaceReferences(answer string, links []string) string {
	return referencePattern.ReplaceAllStringFunc(answer, func(match string) string {
		groups := referencePattern.FindStringSubmatch(match)
		refNum, err := strconv.Atoi(groups[1])
		if err != nil || refNum < 1 || refNum > len(links) {
			return fmt.Sprintf("[<sup>%s</sup>](#)", groups[1])
		}
		return fmt.Sprintf("[<sup>%d</sup>](%s)", refNum, links[refNum-1])
	})
}

// RenumberCitations renumbers the citation links in an answer so they
// count up over the sources this answer actually used, instead of the
// positions those sources held in the full indexed URL list.
func RenumberCitations(answer string, allURLs, usedSources []string) string {
	sourceNumber := make(map[string]int, len(usedSources))
	next := 1
	for _, source := range usedSources {
		if _, ok := sourceNumber[source]; !ok {
			sourceNumber[source] = next
			next++
		}
	}
	for i, link := range allURLs {
		newNum, ok := sourceNumber[link]
		if !ok {
			continue
		}
		old := fmt.Sprintf("[<sup>%d</sup>](%s)", i+1, link)
		replacement := fmt.Sprintf("[<sup>%d</sup>](%s)", newNum, link)
		answer = strings.ReplaceAll(answer, old, replacement)
	}
	return answer
}
