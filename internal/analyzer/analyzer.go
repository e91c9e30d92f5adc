// Package analyzer runs the profile-selected heuristic checks over a single
// submission and produces its ordered flag list.
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/heuristics"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/profile"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/similarity"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/textmetrics"
)

const (
	// DuplicateSimilarityThreshold is the Jaccard score at which two
	// submissions to the same assignment count as duplicates.
	DuplicateSimilarityThreshold = 0.85

	// MinFileSize is the smallest attachment, in bytes, that does not get a
	// small-file flag.
	MinFileSize = 1024

	// BibliographicWordCount gates the citation checks: shorter texts are
	// unlikely to carry citations at all.
	BibliographicWordCount = 300
)

type Analyzer struct {
	verifier heuristics.CitationVerifier
	logger   zerolog.Logger
}

// New builds an Analyzer. verifier may be nil, in which case citations are
// never verified against external catalogs.
func New(verifier heuristics.CitationVerifier, logger zerolog.Logger) *Analyzer {
	return &Analyzer{verifier: verifier, logger: logger}
}

// Analyze evaluates one submission against the profile in actx and its
// sibling submissions to the same assignment. The returned flags are in
// check-evaluation order, which callers rely on for stable report output.
// Malformed or empty fields degrade to "no flag"; Analyze never fails.
func (a *Analyzer) Analyze(ctx context.Context, actx profile.Context, sub models.Submission, siblings []models.Submission) []models.Flag {
	var flags []models.Flag
	add := func(check, message string, evidence float64) {
		flags = append(flags, models.Flag{Check: check, Message: message, Evidence: evidence})
	}

	body := sub.Body
	if body != "" {
		wordCount := textmetrics.WordCount(body)
		th := actx.Thresholds()

		// Length check runs regardless of profile.
		if wordCount > 0 && wordCount < th.MinWordCount {
			add("short_text", fmt.Sprintf("Very short text (%d words)", wordCount), float64(wordCount))
		}

		if actx.Enabled(profile.CheckAITransitions) {
			if count := heuristics.TransitionCount(body); count >= th.AITransitionCount {
				add("ai_transitions", fmt.Sprintf("Clichéd transitions (%d instances)", count), float64(count))
			}
		}

		if actx.Enabled(profile.CheckHedgePhrases) {
			if count := heuristics.HedgeCount(body); count >= 2 {
				add("hedge_phrases", fmt.Sprintf("Excessive hedging (%d hedge phrases)", count), float64(count))
			}
		}

		if actx.Enabled(profile.CheckInflatedVocabulary) {
			if inflated := heuristics.InflatedWords(body); len(inflated) >= 3 {
				add("inflated_vocabulary",
					fmt.Sprintf("Inflated vocabulary: %s", strings.Join(inflated[:3], ", ")),
					float64(len(inflated)))
			}
		}

		if actx.Enabled(profile.CheckGenericPhrases) {
			if count := heuristics.GenericCount(body); count >= 3 {
				add("generic_phrases", fmt.Sprintf("Generic/vague content (%d vague phrases)", count), float64(count))
			}
		}

		if actx.Enabled(profile.CheckBalanceMarkers) {
			if count := heuristics.BalanceCount(body); count >= 2 {
				add("balance_markers", fmt.Sprintf("Over-balanced/false equivalence (%d markers)", count), float64(count))
			}
		}

		if actx.Enabled(profile.CheckPassiveVoice) {
			passiveCount := heuristics.PassiveCount(body)
			totalSentences := textmetrics.RawSentenceCount(body)
			threshold := float64(th.PassiveVoicePercent) / 100
			if totalSentences > 5 {
				ratio := float64(passiveCount) / float64(totalSentences)
				if ratio > threshold {
					add("passive_voice", fmt.Sprintf("Excessive passive voice (%d%%)", int(ratio*100)), ratio)
				}
			}
		}

		if actx.Enabled(profile.CheckPersonalMarkers) {
			if count := heuristics.PersonalCount(body); wordCount > 200 && count < 3 {
				add("personal_markers", "Lacks personal/embodied language", float64(count))
			}
		}

		if actx.Enabled(profile.CheckEmotionalMarkers) {
			if count := heuristics.EmotionalCount(body); wordCount > 200 && count == 0 {
				add("emotional_markers", "No emotional/vulnerable language", 0)
			}
		}

		// Uniform paragraph structure only matters for work polished enough
		// to have complete sentences at all.
		if actx.Enabled(profile.CheckCompleteSentences) {
			if uniformity := heuristics.ParagraphUniformity(body); uniformity > 0.8 {
				add("paragraph_uniformity", "Suspiciously uniform paragraphs (mechanical structure)", uniformity)
			}
		}

		// Circular reasoning indicates generation regardless of assignment
		// type, so it is never profile-gated.
		if heuristics.RepetitiveReasoning(body) {
			add("repetitive_reasoning", "Repetitive/circular reasoning detected", 0)
		}

		if actx.Enabled(profile.CheckCopyPaste) {
			if indicators := heuristics.CopyPasteIndicators(body); len(indicators) > 0 {
				add("copy_paste",
					fmt.Sprintf("Copy-paste indicators: %s", strings.Join(indicators, ", ")),
					float64(len(indicators)))
			}
		}

		if actx.Enabled(profile.CheckCompleteSentences) {
			completeness := heuristics.SentenceCompleteness(body)
			threshold := float64(th.CompleteSentencePercent) / 100
			if actx.Inverted(profile.CheckCompleteSentences) {
				if completeness > threshold && wordCount > 50 {
					add("complete_sentences",
						fmt.Sprintf("Too polished for notes (%d%% complete sentences - expected fragments)", int(completeness*100)),
						completeness)
				}
			} else {
				if completeness > threshold && wordCount > 100 {
					add("complete_sentences",
						fmt.Sprintf("Suspiciously polished (%d%% complete sentences)", int(completeness*100)),
						completeness)
				}
			}
		}

		if actx.Enabled(profile.CheckEssayOrganization) {
			for _, f := range heuristics.EssayOrganization(body).Flags {
				add("essay_organization", f, 0)
			}
		}

		if actx.Enabled(profile.CheckHeadingsStructure) {
			for _, f := range heuristics.HeadingStructure(body).Flags {
				add("headings_structure", f, 0)
			}
		}

		if actx.Enabled(profile.CheckParagraphStructure) && actx.Inverted(profile.CheckParagraphStructure) {
			for _, f := range heuristics.ProseInNotes(body).Flags {
				add("paragraph_structure", f, 0)
			}
		}

		// Citation plausibility is gated on length, not profile.
		if wordCount > BibliographicWordCount {
			bib := heuristics.BibliographicMarkers(body)
			for _, f := range bib.Flags {
				add("bibliographic", f, 0)
			}
			for _, f := range heuristics.VerifyCitations(ctx, a.verifier, bib.Citations) {
				add("citation_verification", f, 0)
			}
		}

		if actx.Enabled(profile.CheckCrossSubmission) {
			for _, other := range siblings {
				if other.UserID == sub.UserID || other.Body == "" {
					continue
				}
				score := similarity.Jaccard(body, other.Body)
				if score >= DuplicateSimilarityThreshold {
					name := other.UserName()
					if name == "" {
						name = fmt.Sprintf("User %d", other.UserID)
					}
					add("cross_submission",
						fmt.Sprintf("Highly similar to %s's submission (%d%% match)", name, int(score*100)),
						score)
					// At most one duplicate flag per submission.
					break
				}
			}
		}
	}

	for _, file := range sub.Attachments {
		if file.Size > 0 && file.Size < MinFileSize {
			add("small_file", fmt.Sprintf("Small file '%s' (%d bytes)", file.Filename, file.Size), float64(file.Size))
		}
		if heuristics.IsGenericFilename(file.Filename) {
			add("generic_filename", fmt.Sprintf("Generic filename: '%s'", file.Filename), 0)
		}
	}

	if sub.URL != "" && body == "" && len(sub.Attachments) == 0 {
		add("url_only", "URL with no description", 0)
	}

	return flags
}
