// Package grading implements the complete/incomplete and discussion grading
// rules: good-faith-effort evaluation of regular submissions and word-count
// criteria for discussion posts.
package grading

import (
	"fmt"
	"strings"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/textmetrics"
)

// MinFileSize is the smallest attachment, in bytes, treated as a real upload.
const MinFileSize = 1024

// Grade values posted back for pass/fail assignments.
const (
	GradeComplete   = "complete"
	GradeIncomplete = "incomplete"
)

// IsPDF reports whether an attachment is a PDF by content type or extension.
func IsPDF(file models.Attachment) bool {
	return strings.HasPrefix(file.ContentType, "application/pdf") ||
		strings.HasSuffix(strings.ToLower(file.Filename), ".pdf")
}

// HasPDFAnnotations reports whether the submission carries an annotated PDF.
// Canvas marks instructor-provided PDFs annotated by the student with the
// student_annotation type; student-uploaded PDFs get a canvadoc document ID
// or a preview URL once Canvas has processed them for annotation.
func HasPDFAnnotations(sub models.Submission) (bool, string) {
	if sub.SubmissionType == "student_annotation" {
		return true, "student_annotation type"
	}
	if sub.SubmissionType != "online_upload" {
		return false, fmt.Sprintf("not an annotation type (type: %s)", sub.SubmissionType)
	}
	if len(sub.Attachments) == 0 {
		return false, "no attachments"
	}
	for _, file := range sub.Attachments {
		if !IsPDF(file) {
			continue
		}
		if file.CanvadocDocumentID != "" {
			return true, "has canvadoc_document_id"
		}
		if file.PreviewURL != "" {
			return true, "has preview_url"
		}
	}
	return false, "PDF without annotation markers"
}

// EvaluateSubmission decides whether a submission shows good-faith effort.
// Flagged submissions can still grade complete; the flags feed the rationale
// export for instructor review.
func EvaluateSubmission(sub models.Submission, minWordCount int) (bool, []string) {
	var flags []string
	hasContent := false

	// An annotated PDF is complete on its own, no further checks.
	if annotated, _ := HasPDFAnnotations(sub); annotated {
		return true, nil
	}

	if sub.Body != "" {
		hasContent = true
		wordCount := textmetrics.WordCount(sub.Body)
		if wordCount > 0 && wordCount < minWordCount {
			flags = append(flags, fmt.Sprintf("Very short text (%d words)", wordCount))
		}
	}

	if len(sub.Attachments) > 0 {
		hasContent = true
		for _, file := range sub.Attachments {
			pdf := IsPDF(file)
			if pdf && file.CanvadocDocumentID == "" && file.PreviewURL == "" {
				flags = append(flags,
					fmt.Sprintf("PDF '%s' uploaded without annotations - may need manual review", file.Filename))
			}
			// Tiny files suggest placeholder uploads. PDFs are exempt since
			// even real ones compress small.
			if !pdf && file.Size > 0 && file.Size < MinFileSize {
				flags = append(flags, fmt.Sprintf("Small file '%s' (%d bytes)", file.Filename, file.Size))
			}
		}
	}

	if sub.URL != "" {
		hasContent = true
		if sub.Body == "" && len(sub.Attachments) == 0 {
			flags = append(flags, "URL with no description")
		}
	}

	submitted := sub.SubmissionType != "" &&
		sub.SubmissionType != "not_submitted" &&
		sub.SubmissionType != "none" &&
		sub.SubmissionType != "on_paper"

	return hasContent && submitted, flags
}

// Criteria is one grade tier's minimums. Zero-valued fields are not checked,
// except TotalWords which always applies.
type Criteria struct {
	TotalWords int `mapstructure:"total_words" json:"total_words"`
	MinReplies int `mapstructure:"min_replies" json:"min_replies"`
	AvgWords   int `mapstructure:"avg_words" json:"avg_words"`
}

// DiscussionResult is the outcome of grading one student's posts.
type DiscussionResult struct {
	Grade      string
	Flags      []string
	TotalWords int
	PostCount  int
	AvgWords   int
}

// letterOrder is the tier sequence for letter-graded discussions. A student
// earns the first tier whose criteria they meet, or F below all tiers.
var letterOrder = []string{"A", "B", "C", "D"}

// EvaluateDiscussion grades a student's posts against the tiered criteria.
// For pass_fail assignments only the "complete" tier is consulted.
func EvaluateDiscussion(posts []string, criteria map[string]Criteria, gradingType string) DiscussionResult {
	if len(posts) == 0 {
		grade := "F"
		if gradingType == "pass_fail" {
			grade = GradeIncomplete
		}
		return DiscussionResult{Grade: grade, Flags: []string{"No posts"}}
	}

	total := 0
	for _, post := range posts {
		total += textmetrics.WordCount(textmetrics.StripHTML(post))
	}
	avg := total / len(posts)

	result := DiscussionResult{TotalWords: total, PostCount: len(posts), AvgWords: avg}

	if gradingType == "pass_fail" {
		c := criteria[GradeComplete]
		minTotal := c.TotalWords
		if minTotal == 0 {
			minTotal = 50
		}
		if total < minTotal {
			result.Flags = append(result.Flags, fmt.Sprintf("Total words too low (%d/%d)", total, minTotal))
		}
		if c.MinReplies > 0 && len(posts) < c.MinReplies {
			result.Flags = append(result.Flags,
				fmt.Sprintf("Not enough posts/replies (%d/%d)", len(posts), c.MinReplies))
		}
		if c.AvgWords > 0 && avg < c.AvgWords {
			result.Flags = append(result.Flags,
				fmt.Sprintf("Average words per post too low (%d/%d)", avg, c.AvgWords))
		}
		if len(result.Flags) > 0 {
			result.Grade = GradeIncomplete
		} else {
			result.Grade = GradeComplete
		}
		return result
	}

	for _, tier := range letterOrder {
		c, ok := criteria[tier]
		if !ok {
			continue
		}
		meetsTotal := total >= c.TotalWords
		meetsReplies := c.MinReplies == 0 || len(posts) >= c.MinReplies
		meetsAvg := c.AvgWords == 0 || avg >= c.AvgWords
		if meetsTotal && meetsReplies && meetsAvg {
			result.Grade = tier
			return result
		}
	}

	result.Grade = "F"
	result.Flags = append(result.Flags, "Did not meet minimum criteria")
	return result
}

// CollectPosts flattens a discussion's entry tree into per-student message
// lists, descending into nested replies.
func CollectPosts(entries []models.DiscussionEntry) map[int64][]string {
	posts := make(map[int64][]string)
	var walk func(models.DiscussionEntry)
	walk = func(e models.DiscussionEntry) {
		if e.UserID != 0 {
			posts[e.UserID] = append(posts[e.UserID], e.Message)
		}
		for _, reply := range e.Replies {
			walk(reply)
		}
	}
	for _, e := range entries {
		walk(e)
	}
	return posts
}

// ShouldSkipRegrade reports whether an existing grade is preserved in regrade
// mode, with the reason recorded in the rationale export.
func ShouldSkipRegrade(sub *models.Submission, gradingType string) (bool, string) {
	if sub == nil {
		return false, ""
	}
	if gradingType == "pass_fail" {
		if sub.Grade == GradeComplete {
			return true, "Already complete (not regraded)"
		}
		return false, ""
	}
	if sub.Score != nil && *sub.Score > 0 {
		return true, fmt.Sprintf("Already graded (%g points)", *sub.Score)
	}
	return false, ""
}
