package heuristics

import "regexp"

// Clichéd transitions and meta-commentary common in generated prose.
var AITransitions = []string{
	"it is important to note", "it should be noted", "it is worth noting",
	"in conclusion", "to sum up", "in summary", "to summarize",
	"furthermore", "moreover", "additionally", "in addition",
	"this essay will explore", "this paper will examine", "this section will discuss",
	"as previously mentioned", "as stated above", "as discussed earlier",
	"on the one hand", "on the other hand", "conversely", "however",
	"firstly", "secondly", "thirdly", "lastly", "finally",
}

// Hedge phrases indicating avoidance of stance.
var HedgePhrases = []string{
	"it can be argued that", "it could be said that", "one might argue",
	"it is possible that", "arguably", "presumably", "ostensibly",
	"it appears that", "it seems that", "tends to suggest",
}

// WordPair maps an unnecessarily complex word to its plain alternative.
type WordPair struct {
	Complex string
	Simple  string
}

var InflatedVocab = []WordPair{
	{"utilize", "use"}, {"demonstrate", "show"}, {"individuals", "people"},
	{"commence", "start"}, {"terminate", "end"}, {"endeavor", "try"},
	{"facilitate", "help"}, {"implement", "do"}, {"ascertain", "find out"},
	{"optimal", "best"}, {"subsequent", "next"}, {"prior to", "before"},
	{"in order to", "to"}, {"due to the fact that", "because"},
}

// Generic or vague phrases lacking specificity.
var GenericPhrases = []string{
	"many things", "various aspects", "in today's society", "in today's world",
	"throughout history", "since the beginning of time", "it can be said",
	"some people believe", "it is believed that", "one could argue",
	"studies show", "research indicates", "experts say", "it has been shown",
	"this shows that", "this proves that", "overall", "basically",
	"a variety of", "a number of", "plays a crucial role", "of paramount importance",
}

// False-equivalence markers of over-balanced writing.
var BalanceMarkers = []string{
	"both sides", "both perspectives", "different viewpoints", "various opinions",
	"while some argue", "others contend", "there are arguments for and against",
}

var PassivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(is|are|was|were|be|been|being)\s+\w+ed\b`),
	regexp.MustCompile(`(?i)\b(can|could|may|might|should|would)\s+be\s+\w+ed\b`),
}

// First-person and embodied language. Absence of these markers is the signal
// in reflective writing. Matched against lowercased text.
var PersonalMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\bi\s`), regexp.MustCompile(`\bmy\b`),
	regexp.MustCompile(`\bme\b`), regexp.MustCompile(`\bmine\b`),
	regexp.MustCompile(`\bwe\b`), regexp.MustCompile(`\bour\b`),
	regexp.MustCompile(`\bus\b`), regexp.MustCompile(`as a\b`),
	regexp.MustCompile(`being a\b`), regexp.MustCompile(`growing up`),
}

// Emotional and vulnerable language.
var EmotionalMarkers = []string{
	"i feel", "i felt", "i was", "i struggled", "i realized", "i noticed",
	"confused", "frustrated", "excited", "surprised", "shocked", "angry",
	"it hurt", "i cried", "i laughed", "nervous", "scared", "proud",
}

// Filenames that suggest a file was never named by the student.
var GenericFilenames = []*regexp.Regexp{
	regexp.MustCompile(`^untitled\d*\..*$`), regexp.MustCompile(`^document\d*\..*$`),
	regexp.MustCompile(`^assignment\d*\..*$`), regexp.MustCompile(`^file\d*\..*$`),
	regexp.MustCompile(`^download\d*\..*$`), regexp.MustCompile(`^new file\d*\..*$`),
	regexp.MustCompile(`^copy of .*$`),
}
