// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Tier is the ordinal priority bucket assigned to a paper. Lower is more
// important; TierNone marks papers that matched nothing and are dropped
// from the briefing.
type Tier int

const (
	TierNone Tier = 0
	Tier1    Tier = 1
	Tier2    Tier = 2
	Tier3    Tier = 3
)

// Classification reasons. These strings appear verbatim in briefings and in
// the paper archive, so they are fixed.
const (
	ReasonCitesYou  = "Cites your work"
	ReasonCoreTopic = "Core research topic"
	ReasonCoolTopic = "COOL project topic"
	ReasonNoMatch   = "No match"
)

// Paper holds the metadata of a single preprint fetched from the arXiv
// listing feed.
type Paper struct {
	// ArxivID is the canonical identifier with any version suffix
	// stripped (e.g. "2301.07041", not "2301.07041v2").
	ArxivID string `json:"arxiv_id" yaml:"arxiv_id"`

	// Title is the paper title with newlines collapsed to spaces.
	Title string `json:"title" yaml:"title"`

	// Authors lists the authors in feed order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Categories lists every category the paper is listed under.
	Categories []string `json:"categories" yaml:"categories"`

	// PrimaryCategory is the paper's primary arXiv category.
	PrimaryCategory string `json:"primary_category" yaml:"primary_category"`

	// Published and Updated are the feed timestamps, kept as strings.
	Published string `json:"published" yaml:"published"`
	Updated   string `json:"updated" yaml:"updated"`

	// Comment is the author-supplied comment line, if any.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`

	// AbsURL and PDFURL are derived from the canonical ID.
	AbsURL string `json:"abs_url" yaml:"abs_url"`
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`
}

// TierResult is the outcome of classifying one paper. Exactly one tier (or
// TierNone) is assigned per paper.
type TierResult struct {
	// Tier is the assigned priority bucket.
	Tier Tier `json:"tier" yaml:"tier"`

	// Reason is the fixed human-readable justification.
	Reason string `json:"reason" yaml:"reason"`

	// MatchedKeywords lists the keywords that fired, in the order they
	// appear in the configured keyword list. Empty for tier 1 and for
	// no match.
	MatchedKeywords []string `json:"matched_keywords" yaml:"matched_keywords"`
}

// ClassifiedPaper is a paper enriched with its classification. The embedded
// structs flatten on marshal, so the payload carries the paper fields and
// the result fields side by side.
type ClassifiedPaper struct {
	Paper      `yaml:",inline"`
	TierResult `yaml:",inline"`
}

// TierGroups maps each assigned tier to its papers, preserving feed order
// within a bucket. Papers classified TierNone appear in no bucket.
type TierGroups map[Tier][]ClassifiedPaper

// Total returns the number of papers across all buckets.
func (g TierGroups) Total() int {
	n := 0
	for _, papers := range g {
		n += len(papers)
	}
	return n
}
