package grading

import (
	"strings"
	"testing"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
)

func TestAnnotatedPDFIsComplete(t *testing.T) {
	sub := models.Submission{
		SubmissionType: "online_upload",
		Attachments: []models.Attachment{
			{Filename: "worksheet.pdf", ContentType: "application/pdf", CanvadocDocumentID: "abc123"},
		},
	}
	complete, flags := EvaluateSubmission(sub, 50)
	if !complete {
		t.Fatal("annotated PDF must grade complete")
	}
	if len(flags) != 0 {
		t.Errorf("annotated PDF needs no review flags, got %v", flags)
	}
}

func TestStudentAnnotationTypeIsComplete(t *testing.T) {
	sub := models.Submission{SubmissionType: "student_annotation"}
	if complete, _ := EvaluateSubmission(sub, 50); !complete {
		t.Fatal("student_annotation submissions are complete by definition")
	}
}

func TestUnannotatedPDFFlagsManualReview(t *testing.T) {
	sub := models.Submission{
		SubmissionType: "online_upload",
		Attachments: []models.Attachment{
			{Filename: "Essay.PDF", Size: 200},
		},
	}
	complete, flags := EvaluateSubmission(sub, 50)
	if !complete {
		t.Fatal("PDF upload still counts as content")
	}
	if len(flags) != 1 || !strings.Contains(flags[0], "may need manual review") {
		t.Fatalf("expected only the manual-review flag, got %v", flags)
	}
	for _, f := range flags {
		if strings.Contains(f, "Small file") {
			t.Errorf("small-file check must skip PDFs: %v", flags)
		}
	}
}

func TestSmallNonPDFFileFlagged(t *testing.T) {
	sub := models.Submission{
		SubmissionType: "online_upload",
		Attachments:    []models.Attachment{{Filename: "notes.txt", Size: 500}},
	}
	complete, flags := EvaluateSubmission(sub, 50)
	if !complete {
		t.Fatal("a tiny file is suspicious, not incomplete")
	}
	if len(flags) != 1 || !strings.Contains(flags[0], "Small file 'notes.txt' (500 bytes)") {
		t.Fatalf("got %v", flags)
	}
}

func TestUnsubmittedTypesAreIncomplete(t *testing.T) {
	for _, typ := range []string{"", "not_submitted", "none", "on_paper"} {
		sub := models.Submission{SubmissionType: typ, Body: strings.Repeat("word ", 60)}
		if complete, _ := EvaluateSubmission(sub, 50); complete {
			t.Errorf("type %q must not grade complete", typ)
		}
	}
}

func TestShortBodyFlaggedButComplete(t *testing.T) {
	sub := models.Submission{SubmissionType: "online_text_entry", Body: "only five words right here"}
	complete, flags := EvaluateSubmission(sub, 50)
	if !complete {
		t.Fatal("short text is flagged for review, not failed")
	}
	if len(flags) != 1 || !strings.Contains(flags[0], "Very short text (5 words)") {
		t.Fatalf("got %v", flags)
	}
}

func TestDiscussionPassFail(t *testing.T) {
	criteria := map[string]Criteria{
		GradeComplete: {TotalWords: 100, MinReplies: 2, AvgWords: 30},
	}

	long := strings.Repeat("thoughtful analysis of the reading ", 12) // 60 words

	tests := []struct {
		name      string
		posts     []string
		wantGrade string
		wantFlags int
	}{
		{"meets all", []string{long, long}, GradeComplete, 0},
		{"too few posts", []string{long + long}, GradeIncomplete, 1},
		{"no posts", nil, GradeIncomplete, 1},
		{"too short", []string{"short reply", "another short reply"}, GradeIncomplete, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := EvaluateDiscussion(tt.posts, criteria, "pass_fail")
			if r.Grade != tt.wantGrade {
				t.Errorf("grade = %q, want %q (flags %v)", r.Grade, tt.wantGrade, r.Flags)
			}
			if len(r.Flags) != tt.wantFlags {
				t.Errorf("flags = %v, want %d", r.Flags, tt.wantFlags)
			}
		})
	}
}

func TestDiscussionLetterGrades(t *testing.T) {
	criteria := map[string]Criteria{
		"A": {TotalWords: 400, MinReplies: 3},
		"B": {TotalWords: 300, MinReplies: 2},
		"C": {TotalWords: 200},
		"D": {TotalWords: 100},
	}
	post := func(words int) string {
		return strings.TrimSpace(strings.Repeat("word ", words))
	}

	tests := []struct {
		name  string
		posts []string
		want  string
	}{
		{"earns A", []string{post(150), post(150), post(150)}, "A"},
		{"B on reply count", []string{post(250), post(250)}, "B"},
		{"C single long post", []string{post(250)}, "C"},
		{"below all tiers", []string{post(40)}, "F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := EvaluateDiscussion(tt.posts, criteria, "points")
			if r.Grade != tt.want {
				t.Errorf("grade = %q, want %q (total=%d posts=%d)", r.Grade, tt.want, r.TotalWords, r.PostCount)
			}
		})
	}
}

func TestDiscussionStripsHTML(t *testing.T) {
	r := EvaluateDiscussion([]string{"<p>one two three four five</p>"}, map[string]Criteria{
		GradeComplete: {TotalWords: 5},
	}, "pass_fail")
	if r.TotalWords != 5 {
		t.Errorf("HTML tags must not count as words: got %d", r.TotalWords)
	}
	if r.Grade != GradeComplete {
		t.Errorf("got %q", r.Grade)
	}
}

func TestCollectPostsFlattensReplies(t *testing.T) {
	entries := []models.DiscussionEntry{
		{UserID: 1, Message: "top post", Replies: []models.DiscussionEntry{
			{UserID: 2, Message: "first reply", Replies: []models.DiscussionEntry{
				{UserID: 1, Message: "nested response"},
			}},
		}},
		{UserID: 3, Message: "another thread"},
	}
	posts := CollectPosts(entries)
	if len(posts[1]) != 2 {
		t.Errorf("user 1 has a post and a nested reply, got %v", posts[1])
	}
	if len(posts[2]) != 1 || len(posts[3]) != 1 {
		t.Errorf("got %v", posts)
	}
}

func TestShouldSkipRegrade(t *testing.T) {
	score := 8.0
	zero := 0.0

	if skip, _ := ShouldSkipRegrade(nil, "pass_fail"); skip {
		t.Error("missing submission never skips")
	}
	if skip, reason := ShouldSkipRegrade(&models.Submission{Grade: GradeComplete}, "pass_fail"); !skip || !strings.Contains(reason, "Already complete") {
		t.Errorf("skip=%v reason=%q", skip, reason)
	}
	if skip, _ := ShouldSkipRegrade(&models.Submission{Grade: GradeIncomplete}, "pass_fail"); skip {
		t.Error("incomplete grades are regraded")
	}
	if skip, reason := ShouldSkipRegrade(&models.Submission{Score: &score}, "points"); !skip || !strings.Contains(reason, "8 points") {
		t.Errorf("skip=%v reason=%q", skip, reason)
	}
	if skip, _ := ShouldSkipRegrade(&models.Submission{Score: &zero}, "points"); skip {
		t.Error("zero scores are regraded")
	}
}
