// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

// ResolutionContext is the dedup state of one request. It is owned by the
// orchestrating goroutine and must not be shared across requests.
type ResolutionContext struct {
	// ExcludedNorm holds normalized titles that must not be accepted:
	// hard and soft exclusions, recent recommendations and accepted titles.
	ExcludedNorm Set

	// ExcludedKeys holds provider keys ("type:id") that must not be accepted.
	ExcludedKeys Set

	// ChosenNorm holds the normalized titles accepted so far.
	ChosenNorm Set

	// ChosenTitles lists the accepted candidate titles in acceptance order.
	ChosenTitles []string
}

// NewResolutionContext seeds a context from extracted signals and the
// titles and keys of recently recommended items.
func NewResolutionContext(sig *Signals, recentNorm, recentKeys Set) *ResolutionContext {
	rc := &ResolutionContext{
		ExcludedNorm: NewSet(),
		ExcludedKeys: NewSet(),
		ChosenNorm:   NewSet(),
	}
	if sig != nil {
		rc.ExcludedNorm.Merge(sig.HardExcludedNorm)
		rc.ExcludedNorm.Merge(sig.SoftExcludedNorm)
		rc.ExcludedKeys.Merge(sig.ExcludedKeys)
	}
	rc.ExcludedNorm.Merge(recentNorm)
	rc.ExcludedKeys.Merge(recentKeys)
	return rc
}

// blocked reports whether a normalized title is already excluded or chosen.
func (rc *ResolutionContext) blocked(norm string) bool {
	return rc.ChosenNorm.Has(norm) || rc.ExcludedNorm.Has(norm)
}

func (rc *ResolutionContext) mark(norm, key string) {
	rc.ChosenNorm.Add(norm)
	rc.ExcludedNorm.Add(norm)
	rc.ExcludedKeys.Add(key)
}

func (rc *ResolutionContext) unmark(norm, key string) {
	rc.ChosenNorm.Remove(norm)
	rc.ExcludedNorm.Remove(norm)
	rc.ExcludedKeys.Remove(key)
}

// accept records the title of an accepted candidate.
func (rc *ResolutionContext) accept(title string) {
	if title != "" {
		rc.ChosenTitles = append(rc.ChosenTitles, title)
	}
}
