package retrieval

import (
	"strings"
	"unicode"

	"github.com/docuquery/docuquery/model"
)

// stopwords covers English and Indonesian, the two languages the indexed
// corpora are written in. Question words count as stop-words: for
// "berapa aset lancar?" the salient tokens are "aset" and "lancar".
var stopwords = map[string]struct{}{
	// English
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "can": {},
	"could": {}, "should": {}, "shall": {}, "may": {}, "might": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "when": {}, "where": {},
	"why": {}, "how": {}, "much": {}, "many": {},
	"and": {}, "or": {}, "but": {}, "not": {}, "no": {}, "nor": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {},
	"by": {}, "from": {}, "as": {}, "about": {}, "into": {}, "than": {},
	"then": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"it": {}, "its": {}, "there": {}, "here": {}, "they": {}, "them": {},
	"their": {}, "we": {}, "our": {}, "you": {}, "your": {}, "i": {},
	"me": {}, "my": {}, "so": {}, "if": {}, "all": {}, "any": {}, "each": {},
	"please": {}, "show": {}, "tell": {}, "give": {},
	// Indonesian
	"yang": {}, "dan": {}, "atau": {}, "di": {}, "ke": {}, "dari": {},
	"untuk": {}, "dengan": {}, "pada": {}, "dalam": {}, "adalah": {},
	"ini": {}, "itu": {}, "apa": {}, "apakah": {}, "berapa": {},
	"bagaimana": {}, "kapan": {}, "dimana": {}, "siapa": {}, "mengapa": {},
	"tidak": {}, "akan": {}, "juga": {}, "sudah": {}, "telah": {},
	"bisa": {}, "dapat": {}, "ada": {}, "saya": {}, "kami": {}, "kita": {},
	"anda": {}, "mereka": {}, "tolong": {}, "mohon": {},
}

// minKeywordLength filters out tokens too short to be salient
const minKeywordLength = 3

// ExtractKeywords tokenizes a question and returns its salient terms:
// lowercase words with punctuation stripped, stop-words and short tokens
// dropped, duplicates removed, original order preserved.
func ExtractKeywords(question string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	seen := make(map[string]struct{}, len(tokens))
	var keywords []string
	for _, token := range tokens {
		if len([]rune(token)) < minKeywordLength {
			continue
		}
		if _, ok := stopwords[token]; ok {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}

	return keywords
}

// MatchKeywords returns the keywords that literally occur in at least one
// candidate chunk's text, case-insensitive. This is a diagnostic signal
// recorded alongside every retrieval, not a ranking input.
func MatchKeywords(keywords []string, results []model.SearchResult) []string {
	if len(keywords) == 0 || len(results) == 0 {
		return nil
	}

	lowered := make([]string, len(results))
	for i, result := range results {
		lowered[i] = strings.ToLower(result.Text)
	}

	var matches []string
	for _, keyword := range keywords {
		for _, text := range lowered {
			if strings.Contains(text, keyword) {
				matches = append(matches, keyword)
				break
			}
		}
	}

	return matches
}
