// Package corpus detects text reuse across the whole set of submissions
// gathered in one run: a student recycling their own work, different
// students sharing text across assignments, and shared key phrases.
//
// All comparisons are naive pairwise Jaccard, quadratic in corpus size.
// That is fine at course scale (tens to low hundreds of submissions); a
// larger corpus would need shingling or minhash.
package corpus

import (
	"sort"
	"strings"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/similarity"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/textmetrics"
)

const (
	// SelfPlagiarismThreshold flags a student reusing their own text across
	// assignments.
	SelfPlagiarismThreshold = 0.70

	// CrossStudentThreshold flags different students sharing text across
	// different assignments.
	CrossStudentThreshold = 0.75

	// PhraseSimilarityThreshold matches near-identical key phrases in the
	// shared-phrasing scan.
	PhraseSimilarityThreshold = 0.6

	// minCorpusWords exempts short submissions from corpus comparison to
	// avoid false positives on boilerplate short answers.
	minCorpusWords = 50
)

// Entry is one submission text keyed by student and assignment.
type Entry struct {
	UserID       int64
	AssignmentID int64
	Assignment   string
	StudentName  string
	Text         string
}

// SelfMatch is one pair of a student's own assignments with similar text.
type SelfMatch struct {
	Assignment1   string  `json:"assignment1"`
	Assignment1ID int64   `json:"assignment1_id"`
	Assignment2   string  `json:"assignment2"`
	Assignment2ID int64   `json:"assignment2_id"`
	Similarity    float64 `json:"similarity"`
}

// CrossMatch is a similar pair of submissions from different students on
// different assignments.
type CrossMatch struct {
	Student1      string  `json:"student1"`
	Student1ID    int64   `json:"student1_id"`
	Assignment1   string  `json:"assignment1"`
	Assignment1ID int64   `json:"assignment1_id"`
	Student2      string  `json:"student2"`
	Student2ID    int64   `json:"student2_id"`
	Assignment2   string  `json:"assignment2"`
	Assignment2ID int64   `json:"assignment2_id"`
	Similarity    float64 `json:"similarity"`
}

// Result bundles both plagiarism scans over one corpus.
type Result struct {
	SelfPlagiarism map[int64][]SelfMatch `json:"self_plagiarism"`
	CrossStudent   []CrossMatch          `json:"cross_student"`
}

// Analyze runs both scans. Submissions of 50 words or fewer are skipped
// entirely.
func Analyze(entries []Entry) Result {
	substantial := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if textmetrics.WordCount(e.Text) > minCorpusWords {
			substantial = append(substantial, e)
		}
	}
	return Result{
		SelfPlagiarism: SelfPlagiarism(substantial),
		CrossStudent:   CrossStudent(substantial),
	}
}

// SelfPlagiarism compares every student's submissions pairwise across their
// assignments, keyed by user ID. Callers must pre-filter short texts.
func SelfPlagiarism(entries []Entry) map[int64][]SelfMatch {
	byStudent := make(map[int64][]Entry)
	var order []int64
	for _, e := range entries {
		if _, ok := byStudent[e.UserID]; !ok {
			order = append(order, e.UserID)
		}
		byStudent[e.UserID] = append(byStudent[e.UserID], e)
	}

	result := make(map[int64][]SelfMatch)
	for _, userID := range order {
		subs := byStudent[userID]
		var matches []SelfMatch
		for i := 0; i < len(subs); i++ {
			for j := i + 1; j < len(subs); j++ {
				if subs[i].AssignmentID == subs[j].AssignmentID {
					continue
				}
				score := similarity.Jaccard(subs[i].Text, subs[j].Text)
				if score >= SelfPlagiarismThreshold {
					matches = append(matches, SelfMatch{
						Assignment1:   subs[i].Assignment,
						Assignment1ID: subs[i].AssignmentID,
						Assignment2:   subs[j].Assignment,
						Assignment2ID: subs[j].AssignmentID,
						Similarity:    score,
					})
				}
			}
		}
		if len(matches) > 0 {
			result[userID] = matches
		}
	}
	return result
}

type pairKey struct {
	user1, assignment1 int64
	user2, assignment2 int64
}

func canonicalPair(u1, a1, u2, a2 int64) pairKey {
	if u1 > u2 || (u1 == u2 && a1 > a2) {
		u1, a1, u2, a2 = u2, a2, u1, a1
	}
	return pairKey{u1, a1, u2, a2}
}

// CrossStudent compares every pair of submissions from different students on
// different assignments, deduplicating symmetric pairs through a canonical
// sorted key.
func CrossStudent(entries []Entry) []CrossMatch {
	var matches []CrossMatch
	checked := make(map[pairKey]bool)

	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			e1, e2 := entries[i], entries[j]
			if e1.UserID == e2.UserID || e1.AssignmentID == e2.AssignmentID {
				continue
			}

			key := canonicalPair(e1.UserID, e1.AssignmentID, e2.UserID, e2.AssignmentID)
			if checked[key] {
				continue
			}
			checked[key] = true

			score := similarity.Jaccard(e1.Text, e2.Text)
			if score >= CrossStudentThreshold {
				matches = append(matches, CrossMatch{
					Student1:      e1.StudentName,
					Student1ID:    e1.UserID,
					Assignment1:   e1.Assignment,
					Assignment1ID: e1.AssignmentID,
					Student2:      e2.StudentName,
					Student2ID:    e2.UserID,
					Assignment2:   e2.Assignment,
					Assignment2ID: e2.AssignmentID,
					Similarity:    score,
				})
			}
		}
	}
	return matches
}

// PhraseMatch records shared or reworded key phrases between two students.
type PhraseMatch struct {
	Student1ID     int64      `json:"student1_id"`
	Student1       string     `json:"student1"`
	Student2ID     int64      `json:"student2_id"`
	Student2       string     `json:"student2"`
	ExactMatches   []string   `json:"exact_matches"`
	Reordered      [][2]string `json:"reordered_matches"`
	SimilarPhrases int        `json:"similar_phrases"`
	TotalMatches   int        `json:"total_matches"`
}

// phraseComparisonLimit caps the pairwise phrase scan per student pair.
const phraseComparisonLimit = 100

// PhraseOverlap finds key phrases shared across students' texts: exact
// matches, word-reordered matches, and phrase pairs above the similarity
// threshold. Texts of 100 characters or fewer are skipped.
func PhraseOverlap(texts map[int64]string, names map[int64]string, threshold float64) []PhraseMatch {
	type phraseData struct {
		userID     int64
		phrases    []string
		phraseSet  map[string]bool
		normalized map[string]string
	}

	var students []phraseData
	var ids []int64
	for id := range texts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		text := texts[id]
		if len(text) <= 100 {
			continue
		}
		phrases := similarity.ExtractKeyPhrases(text, 3, 8)
		set := make(map[string]bool, len(phrases))
		normalized := make(map[string]string, len(phrases))
		for _, p := range phrases {
			set[p] = true
			normalized[similarity.NormalizePhrase(p)] = p
		}
		students = append(students, phraseData{id, phrases, set, normalized})
	}

	var matches []PhraseMatch
	for i := 0; i < len(students); i++ {
		for j := i + 1; j < len(students); j++ {
			s1, s2 := students[i], students[j]

			var exact []string
			for p := range s1.phraseSet {
				if s2.phraseSet[p] {
					exact = append(exact, p)
				}
			}
			sort.Strings(exact)

			var reordered [][2]string
			for norm, orig1 := range s1.normalized {
				if orig2, ok := s2.normalized[norm]; ok && orig1 != orig2 {
					reordered = append(reordered, [2]string{orig1, orig2})
				}
			}

			similar := 0
			limit1 := min(len(s1.phrases), phraseComparisonLimit)
			limit2 := min(len(s2.phrases), phraseComparisonLimit)
			for _, p1 := range s1.phrases[:limit1] {
				if len(strings.Fields(p1)) < 4 {
					continue
				}
				for _, p2 := range s2.phrases[:limit2] {
					if p1 == p2 || len(strings.Fields(p2)) < 4 {
						continue
					}
					if similarity.Jaccard(p1, p2) >= threshold {
						similar++
					}
				}
			}

			total := len(exact) + len(reordered) + similar
			if total > 0 {
				if len(exact) > 5 {
					exact = exact[:5]
				}
				if len(reordered) > 5 {
					reordered = reordered[:5]
				}
				matches = append(matches, PhraseMatch{
					Student1ID:     s1.userID,
					Student1:       names[s1.userID],
					Student2ID:     s2.userID,
					Student2:       names[s2.userID],
					ExactMatches:   exact,
					Reordered:      reordered,
					SimilarPhrases: similar,
					TotalMatches:   total,
				})
			}
		}
	}
	return matches
}
