// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns preprints to priority tiers using an ordered
// rule cascade: papers citing the owner's work first, then core research
// keywords, then broader project keywords.
package classify

import (
	"strings"

	"github.com/snlongmore/morning-report/pkg/types"
)

// CitationIndex is a set of identifiers known to cite the owner's
// published work. Membership is exact and case-sensitive as supplied;
// the set typically mixes ADS bibcodes and arXiv IDs.
type CitationIndex map[string]struct{}

// NewCitationIndex builds an index from a list of identifiers.
func NewCitationIndex(ids ...string) CitationIndex {
	idx := make(CitationIndex, len(ids))
	for _, id := range ids {
		idx[id] = struct{}{}
	}
	return idx
}

// Add inserts an identifier into the index.
func (c CitationIndex) Add(id string) {
	c[id] = struct{}{}
}

// Contains reports whether id is in the index.
func (c CitationIndex) Contains(id string) bool {
	_, ok := c[id]
	return ok
}

// Classify assigns exactly one tier to a paper. Precedence is absolute:
// a citation-index hit always wins, then tier 2 keywords, then tier 3.
// Keyword matching is a case-folded raw substring test over the title and
// abstract joined by a single space, not word-boundary matching, so "ai"
// matches inside "again". Existing keyword lists were tuned against this
// behavior and assume it.
//
// Classify is pure and total: a paper with a missing title or abstract is
// matched against the empty string rather than rejected.
func Classify(doc types.Paper, tier2, tier3 []string, citers CitationIndex) types.TierResult {
	if len(citers) > 0 && doc.ArxivID != "" && citers.Contains(doc.ArxivID) {
		return types.TierResult{
			Tier:            types.Tier1,
			Reason:          types.ReasonCitesYou,
			MatchedKeywords: []string{},
		}
	}

	text := strings.ToLower(doc.Title + " " + doc.Abstract)

	if matched := matchKeywords(text, tier2); len(matched) > 0 {
		return types.TierResult{
			Tier:            types.Tier2,
			Reason:          types.ReasonCoreTopic,
			MatchedKeywords: matched,
		}
	}

	if matched := matchKeywords(text, tier3); len(matched) > 0 {
		return types.TierResult{
			Tier:            types.Tier3,
			Reason:          types.ReasonCoolTopic,
			MatchedKeywords: matched,
		}
	}

	return types.TierResult{
		Tier:            types.TierNone,
		Reason:          types.ReasonNoMatch,
		MatchedKeywords: []string{},
	}
}

// matchKeywords returns the keywords whose case-folded form occurs in text,
// preserving the input order and original case.
func matchKeywords(text string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// ClassifyAll classifies a batch of papers and groups them by tier, using
// each paper's own identifier for the citation check. Papers that match
// nothing are dropped. Input order is preserved within each bucket, and no
// deduplication happens here; the feed client is expected to have already
// deduplicated by canonical ID.
func ClassifyAll(docs []types.Paper, tier2, tier3 []string, citers CitationIndex) types.TierGroups {
	groups := types.TierGroups{
		types.Tier1: {},
		types.Tier2: {},
		types.Tier3: {},
	}

	for _, doc := range docs {
		result := Classify(doc, tier2, tier3, citers)
		if result.Tier == types.TierNone {
			continue
		}
		groups[result.Tier] = append(groups[result.Tier], types.ClassifiedPaper{
			Paper:      doc,
			TierResult: result,
		})
	}

	return groups
}
