// Package profile holds the assignment-type profiles that decide which
// heuristic checks run and how sensitive they are. Profiles are static data,
// immutable for the duration of a run.
package profile

import "github.com/rs/zerolog"

// CheckName is the closed set of profile-configurable checks.
type CheckName string

const (
	CheckAITransitions      CheckName = "ai_transitions"
	CheckHedgePhrases       CheckName = "hedge_phrases"
	CheckInflatedVocabulary CheckName = "inflated_vocabulary"
	CheckGenericPhrases     CheckName = "generic_phrases"
	CheckBalanceMarkers     CheckName = "balance_markers"
	CheckPassiveVoice       CheckName = "passive_voice"
	CheckPersonalMarkers    CheckName = "personal_markers"
	CheckEmotionalMarkers   CheckName = "emotional_markers"
	CheckCompleteSentences  CheckName = "complete_sentences"
	CheckParagraphStructure CheckName = "paragraph_structure"
	CheckCopyPaste          CheckName = "copy_paste"
	CheckCrossSubmission    CheckName = "cross_submission"
	CheckEssayOrganization  CheckName = "essay_organization"
	CheckHeadingsStructure  CheckName = "headings_structure"
)

var knownChecks = map[CheckName]bool{
	CheckAITransitions: true, CheckHedgePhrases: true, CheckInflatedVocabulary: true,
	CheckGenericPhrases: true, CheckBalanceMarkers: true, CheckPassiveVoice: true,
	CheckPersonalMarkers: true, CheckEmotionalMarkers: true, CheckCompleteSentences: true,
	CheckParagraphStructure: true, CheckCopyPaste: true, CheckCrossSubmission: true,
	CheckEssayOrganization: true, CheckHeadingsStructure: true,
}

// Thresholds are the per-profile numeric sensitivities.
type Thresholds struct {
	MinWordCount            int
	AITransitionCount       int
	PassiveVoicePercent     int
	CompleteSentencePercent int
}

// DefaultThresholds apply when no profile has been selected.
var DefaultThresholds = Thresholds{
	MinWordCount:            50,
	AITransitionCount:       3,
	PassiveVoicePercent:     45,
	CompleteSentencePercent: 80,
}

// Profile is one named configuration bundle. A check absent from Enabled is
// treated as enabled (fail-open); Inverted flips a check's flag polarity,
// e.g. for notes high sentence completeness is the suspicious direction.
type Profile struct {
	Key         string
	Name        string
	Description string
	Enabled     map[CheckName]bool
	Thresholds  Thresholds
	Inverted    map[CheckName]bool
}

const StandardKey = "standard"

var profiles = map[string]Profile{
	"notes_brainstorm": {
		Key:         "notes_brainstorm",
		Name:        "Notes / Brainstorming / Outlines",
		Description: "Informal notes, brainstorming sessions, outlines, or pre-writing activities",
		Enabled: map[CheckName]bool{
			CheckAITransitions:      false,
			CheckHedgePhrases:       false,
			CheckInflatedVocabulary: true,
			CheckGenericPhrases:     false,
			CheckBalanceMarkers:     false,
			CheckPassiveVoice:       false,
			CheckPersonalMarkers:    false,
			CheckEmotionalMarkers:   false,
			CheckCompleteSentences:  true,
			CheckParagraphStructure: true,
			CheckCopyPaste:          true,
			CheckCrossSubmission:    true,
			CheckEssayOrganization:  true,
			CheckHeadingsStructure:  true,
		},
		Thresholds: Thresholds{
			MinWordCount:            20,
			AITransitionCount:       999,
			PassiveVoicePercent:     100,
			CompleteSentencePercent: 50,
		},
		Inverted: map[CheckName]bool{
			CheckCompleteSentences:  true,
			CheckParagraphStructure: true,
		},
	},
	"rough_draft": {
		Key:         "rough_draft",
		Name:        "Rough Draft / First Draft",
		Description: "Early drafts where errors and rough structure are expected",
		Enabled: map[CheckName]bool{
			CheckAITransitions:      true,
			CheckHedgePhrases:       false,
			CheckInflatedVocabulary: true,
			CheckGenericPhrases:     true,
			CheckBalanceMarkers:     false,
			CheckPassiveVoice:       false,
			CheckPersonalMarkers:    false,
			CheckEmotionalMarkers:   false,
			CheckCompleteSentences:  false,
			CheckCopyPaste:          true,
			CheckCrossSubmission:    true,
		},
		Thresholds: Thresholds{
			MinWordCount:            30,
			AITransitionCount:       5,
			PassiveVoicePercent:     60,
			CompleteSentencePercent: 90,
		},
	},
	"personal_reflection": {
		Key:         "personal_reflection",
		Name:        "Personal Reflection / Response Paper",
		Description: "Personal essays, reflections, response papers requiring authentic voice",
		Enabled: map[CheckName]bool{
			CheckAITransitions:      true,
			CheckHedgePhrases:       true,
			CheckInflatedVocabulary: true,
			CheckGenericPhrases:     true,
			CheckBalanceMarkers:     true,
			CheckPassiveVoice:       true,
			CheckPersonalMarkers:    true,
			CheckEmotionalMarkers:   true,
			CheckCompleteSentences:  true,
			CheckCopyPaste:          true,
			CheckCrossSubmission:    true,
		},
		Thresholds: Thresholds{
			MinWordCount:            50,
			AITransitionCount:       3,
			PassiveVoicePercent:     40,
			CompleteSentencePercent: 85,
		},
	},
	"discussion_post": {
		Key:         "discussion_post",
		Name:        "Discussion Forum Post",
		Description: "Online discussion posts, typically requiring engagement with peers/readings",
		Enabled: map[CheckName]bool{
			CheckAITransitions:      true,
			CheckHedgePhrases:       true,
			CheckInflatedVocabulary: true,
			CheckGenericPhrases:     true,
			CheckBalanceMarkers:     true,
			CheckPassiveVoice:       false,
			CheckPersonalMarkers:    true,
			CheckEmotionalMarkers:   true,
			CheckCompleteSentences:  false,
			CheckCopyPaste:          true,
			CheckCrossSubmission:    true,
		},
		Thresholds: Thresholds{
			MinWordCount:            30,
			AITransitionCount:       2,
			PassiveVoicePercent:     50,
			CompleteSentencePercent: 90,
		},
	},
	"analytical_essay": {
		Key:         "analytical_essay",
		Name:        "Analytical / Argumentative Essay",
		Description: "Formal essays with thesis, analysis, and argument",
		Enabled: map[CheckName]bool{
			CheckAITransitions:      true,
			CheckHedgePhrases:       true,
			CheckInflatedVocabulary: true,
			CheckGenericPhrases:     true,
			CheckBalanceMarkers:     true,
			CheckPassiveVoice:       true,
			CheckPersonalMarkers:    false,
			CheckEmotionalMarkers:   false,
			CheckCompleteSentences:  true,
			CheckCopyPaste:          true,
			CheckCrossSubmission:    true,
		},
		Thresholds: Thresholds{
			MinWordCount:            50,
			AITransitionCount:       3,
			PassiveVoicePercent:     45,
			CompleteSentencePercent: 80,
		},
	},
	"research_paper": {
		Key:         "research_paper",
		Name:        "Research Paper with Citations",
		Description: "Formal research papers requiring sources and citations",
		Enabled: map[CheckName]bool{
			CheckAITransitions:      true,
			CheckHedgePhrases:       true,
			CheckInflatedVocabulary: true,
			CheckGenericPhrases:     true,
			CheckBalanceMarkers:     true,
			CheckPassiveVoice:       true,
			CheckPersonalMarkers:    false,
			CheckEmotionalMarkers:   false,
			CheckCompleteSentences:  true,
			CheckCopyPaste:          true,
			CheckCrossSubmission:    true,
		},
		Thresholds: Thresholds{
			MinWordCount:            100,
			AITransitionCount:       4,
			PassiveVoicePercent:     55,
			CompleteSentencePercent: 75,
		},
	},
	"creative_writing": {
		Key:         "creative_writing",
		Name:        "Creative Writing / Fiction",
		Description: "Short stories, poetry, creative nonfiction",
		Enabled: map[CheckName]bool{
			CheckAITransitions:      false,
			CheckHedgePhrases:       false,
			CheckInflatedVocabulary: true,
			CheckGenericPhrases:     true,
			CheckBalanceMarkers:     false,
			CheckPassiveVoice:       false,
			CheckPersonalMarkers:    false,
			CheckEmotionalMarkers:   true,
			CheckCompleteSentences:  false,
			CheckCopyPaste:          true,
			CheckCrossSubmission:    true,
		},
		Thresholds: Thresholds{
			MinWordCount:            50,
			AITransitionCount:       999,
			PassiveVoicePercent:     100,
			CompleteSentencePercent: 100,
		},
	},
	StandardKey: {
		Key:         StandardKey,
		Name:        "Standard Analysis (All Checks)",
		Description: "Default mode - runs all checks with standard sensitivity",
		Enabled: map[CheckName]bool{
			CheckAITransitions:      true,
			CheckHedgePhrases:       true,
			CheckInflatedVocabulary: true,
			CheckGenericPhrases:     true,
			CheckBalanceMarkers:     true,
			CheckPassiveVoice:       true,
			CheckPersonalMarkers:    true,
			CheckEmotionalMarkers:   true,
			CheckCompleteSentences:  true,
			CheckCopyPaste:          true,
			CheckCrossSubmission:    true,
		},
		Thresholds: DefaultThresholds,
	},
}

// Keys lists the available profile keys.
func Keys() []string {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	return keys
}

// Get returns the profile for key, falling back to the standard profile for
// unknown keys. The fallback is logged because it can silently mask a
// configuration typo.
func Get(key string, log zerolog.Logger) Profile {
	if p, ok := profiles[key]; ok {
		return p
	}
	log.Warn().Str("profile", key).Msg("Unknown profile key, falling back to standard")
	return profiles[StandardKey]
}
