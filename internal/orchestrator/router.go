package orchestrator

import (
	"regexp"
	"strings"
)

// rcaIndicators is the fixed indicator set for RCA intent (spec.md §4.F).
var rcaIndicators = []string{
	"failing", "failed", "error", "broken", "not working", "issue", "problem",
	"why", "debug", "troubleshoot", "investigate", "rca", "root cause",
	"crashing", "down", "unavailable", "timeout", "stuck", "help",
}

// Destination is the Router's classification outcome.
type Destination int

const (
	DestinationMainAgent Destination = iota
	DestinationRCACoordinator
)

// RouteDecision is the outcome of classifying one user turn.
type RouteDecision struct {
	Destination Destination
	// MatchedPeer is set iff the turn was classified platform-specific; it
	// names the winning peer under the first-registered tie-break rule.
	MatchedPeer string
}

// peerKeywords holds one peer's compiled whole-word keyword matchers, kept
// in registration order so tie-breaking ("first registered peer wins") is
// deterministic.
type peerKeywords struct {
	peerName string
	patterns []*regexp.Regexp
}

// Router is the purely lexical Query Router (spec.md §4.F): no LLM is
// consulted. Built fresh for this domain — the teacher offers no
// precedent for a keyword router (see DESIGN.md for the stdlib
// justification: regexp/strings are the natural fit for whole-word
// matching, and no pack dependency does this better).
type Router struct {
	peers           []peerKeywords
	rcaPattern      *regexp.Regexp
	specialistCount int
}

// PeerKeywordSource supplies one peer's name and keyword list, decoupling
// the Router from the peer/registry packages' concrete types.
type PeerKeywordSource struct {
	Name     string
	Keywords []string
}

// NewRouter compiles the keyword matchers for the given peers, in
// registration order, plus specialistCount (the number of Specialist
// Agents available — used by the decision table's "≥2 specialists" rule).
func NewRouter(peers []PeerKeywordSource, specialistCount int) *Router {
	r := &Router{
		rcaPattern:      wholeWordPattern(rcaIndicators),
		specialistCount: specialistCount,
	}
	for _, p := range peers {
		pk := peerKeywords{peerName: p.Name}
		for _, kw := range p.Keywords {
			pk.patterns = append(pk.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		r.peers = append(r.peers, pk)
	}
	return r
}

// wholeWordPattern builds one alternation regex matching any of the given
// phrases as a whole word/phrase, case-insensitively.
func wholeWordPattern(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Route classifies a single user turn, deterministically: the same text
// against the same peer configuration always yields the same destination
// (spec.md §8).
func (r *Router) Route(text string) RouteDecision {
	lower := strings.ToLower(text)

	// Platform-specificity: first-registered matching peer wins when one
	// or more peers' keyword lists match (spec.md §4.F's tie-break rule).
	for _, pk := range r.peers {
		for _, pattern := range pk.patterns {
			if pattern.MatchString(lower) {
				return RouteDecision{Destination: DestinationMainAgent, MatchedPeer: pk.peerName}
			}
		}
	}

	if r.rcaPattern.MatchString(lower) && r.specialistCount >= 2 {
		return RouteDecision{Destination: DestinationRCACoordinator}
	}
	return RouteDecision{Destination: DestinationMainAgent}
}
