package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/profile"
)

func testContext(t *testing.T, key string) profile.Context {
	t.Helper()
	return profile.NewContext(profile.Get(key, zerolog.Nop()), zerolog.Nop())
}

func analyze(t *testing.T, actx profile.Context, sub models.Submission, siblings ...models.Submission) []models.Flag {
	t.Helper()
	a := New(nil, zerolog.Nop())
	return a.Analyze(context.Background(), actx, sub, siblings)
}

func longBody(words int) string {
	unique := []string{
		"harvest", "granite", "meridian", "lantern", "copper", "willow",
		"ember", "quarry", "sparrow", "timber", "anchor", "breeze",
	}
	var sb strings.Builder
	for i := 0; i < words; i++ {
		sb.WriteString(unique[i%len(unique)])
		sb.WriteByte(' ')
	}
	return strings.TrimSpace(sb.String())
}

func TestShortTextFlag(t *testing.T) {
	sub := models.Submission{UserID: 1, Body: "only a few words here"}
	flags := analyze(t, testContext(t, "standard"), sub)
	if len(flags) == 0 || flags[0].Check != "short_text" {
		t.Fatalf("expected short_text flag first, got %v", flags)
	}
}

func TestDisabledCheckNeverFlags(t *testing.T) {
	// notes_brainstorm disables ai_transitions entirely.
	body := strings.Repeat("Furthermore, moreover, additionally, in conclusion. ", 20)
	sub := models.Submission{UserID: 1, Body: body}
	for _, f := range analyze(t, testContext(t, "notes_brainstorm"), sub) {
		if f.Check == "ai_transitions" {
			t.Fatalf("ai_transitions is disabled for notes but flagged: %v", f)
		}
	}
}

func TestTransitionsFlagUnderStandard(t *testing.T) {
	body := longBody(60) + ". Furthermore it grew. Moreover it changed. Additionally it stopped."
	flags := analyze(t, testContext(t, "standard"), models.Submission{UserID: 1, Body: body})
	found := false
	for _, f := range flags {
		if f.Check == "ai_transitions" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ai_transitions flag, got %v", flags)
	}
}

func TestCrossSubmissionDuplicate(t *testing.T) {
	body := longBody(80)
	alice := models.Submission{UserID: 1, User: &models.User{ID: 1, Name: "Alice Mason"}, Body: body}
	bob := models.Submission{UserID: 2, User: &models.User{ID: 2, Name: "Bob Reyes"}, Body: body}
	carol := models.Submission{UserID: 3, User: &models.User{ID: 3, Name: "Carol Ng"}, Body: body}

	actx := testContext(t, "standard")
	flags := analyze(t, actx, alice, alice, bob, carol)

	var dupes []models.Flag
	for _, f := range flags {
		if f.Check == "cross_submission" {
			dupes = append(dupes, f)
		}
	}
	if len(dupes) != 1 {
		t.Fatalf("expected exactly one duplicate flag (short-circuit), got %d: %v", len(dupes), dupes)
	}
	if !strings.Contains(dupes[0].Message, "Bob Reyes") {
		t.Errorf("flag should name the first matching student: %q", dupes[0].Message)
	}

	// Bob flags Alice back.
	flags = analyze(t, actx, bob, alice, bob, carol)
	found := false
	for _, f := range flags {
		if f.Check == "cross_submission" && strings.Contains(f.Message, "Alice Mason") {
			found = true
		}
	}
	if !found {
		t.Error("the counterpart submission should flag the other student")
	}
}

func TestCrossSubmissionIgnoresSameStudent(t *testing.T) {
	body := longBody(80)
	sub := models.Submission{UserID: 1, Body: body}
	double := models.Submission{UserID: 1, Body: body}
	for _, f := range analyze(t, testContext(t, "standard"), sub, sub, double) {
		if f.Check == "cross_submission" {
			t.Fatalf("same-student submissions must not flag: %v", f)
		}
	}
}

func TestPassiveVoiceCountsTrailingFragment(t *testing.T) {
	// Five passive sentences with a trailing period: the terminator-separated
	// fragment count is 6, so the minimum-sentence gate opens one sentence
	// earlier than a count of non-empty sentences would allow.
	body := "The ball was kicked. The door was closed. The letter was mailed. " +
		"The cake was baked. The song was played."
	flags := analyze(t, testContext(t, "standard"), models.Submission{UserID: 1, Body: body})
	for _, f := range flags {
		if f.Check == "passive_voice" {
			return
		}
	}
	t.Fatalf("expected passive_voice flag, got %v", flags)
}

func TestNotesInversionPolishedFlag(t *testing.T) {
	sentence := "This argument develops carefully across many connected supporting clauses today. "
	body := strings.Repeat(sentence, 10) // 100% complete sentences, >50 words
	flags := analyze(t, testContext(t, "notes_brainstorm"), models.Submission{UserID: 1, Body: body})

	foundInverted := false
	for _, f := range flags {
		if f.Check == "complete_sentences" {
			if !strings.Contains(f.Message, "Too polished for notes") {
				t.Fatalf("notes profile must use the inverted message, got %q", f.Message)
			}
			foundInverted = true
		}
	}
	if !foundInverted {
		t.Fatalf("expected inverted completeness flag, got %v", flags)
	}
}

func TestStandardPolishedFlag(t *testing.T) {
	sentence := "Each sentence in this essay reads as complete and fully polished prose. "
	body := strings.Repeat(sentence, 12) // >100 words, 100% complete
	flags := analyze(t, testContext(t, "standard"), models.Submission{UserID: 1, Body: body})
	for _, f := range flags {
		if f.Check == "complete_sentences" && strings.Contains(f.Message, "Suspiciously polished") {
			return
		}
	}
	t.Fatalf("expected standard polished flag, got %v", flags)
}

func TestAttachmentFlagsInOrder(t *testing.T) {
	sub := models.Submission{
		UserID: 1,
		Attachments: []models.Attachment{
			{Filename: "untitled1.docx", Size: 500},
		},
	}
	flags := analyze(t, testContext(t, "standard"), sub)
	if len(flags) != 2 {
		t.Fatalf("expected small-file then generic-filename, got %v", flags)
	}
	if flags[0].Check != "small_file" || flags[1].Check != "generic_filename" {
		t.Errorf("wrong order: %v", flags)
	}
}

func TestURLWithNoBodyOrAttachments(t *testing.T) {
	sub := models.Submission{UserID: 1, URL: "https://example.com/essay"}
	flags := analyze(t, testContext(t, "standard"), sub)
	if len(flags) != 1 || flags[0].Check != "url_only" {
		t.Fatalf("expected single url_only flag, got %v", flags)
	}
}

func TestEmptySubmissionNoFlags(t *testing.T) {
	if flags := analyze(t, testContext(t, "standard"), models.Submission{UserID: 1}); len(flags) != 0 {
		t.Fatalf("empty submission should produce no flags, got %v", flags)
	}
}

func TestCheckOrderIsStable(t *testing.T) {
	// A body engineered to trip several checks at once: short for the
	// discussion_post profile, transition-heavy and hedged.
	body := "It is important to note that it is important to note this. " +
		"It can be argued that arguably nothing changed here at all."
	flags := analyze(t, testContext(t, "discussion_post"), models.Submission{UserID: 1, Body: body})

	var order []string
	for _, f := range flags {
		order = append(order, f.Check)
	}
	want := []string{"short_text", "ai_transitions", "hedge_phrases"}
	if len(order) < len(want) {
		t.Fatalf("got %v, want prefix %v", order, want)
	}
	for i, check := range want {
		if order[i] != check {
			t.Fatalf("check order mismatch at %d: got %v, want prefix %v", i, order, want)
		}
	}
}
