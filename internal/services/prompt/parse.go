package prompt

import (
	"strings"
)

const subjectPrefix = "objet:"

// ExtractSubject returns the text after the first line starting with
// "Objet:" (any case), or "" when there is none.
func ExtractSubject(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < len(subjectPrefix) {
			continue
		}
		if strings.EqualFold(trimmed[:len(subjectPrefix)], subjectPrefix) {
			return strings.TrimSpace(trimmed[len(subjectPrefix):])
		}
	}
	return ""
}

// ParseCorrection splits a correction answer into the corrected text and
// the synonyms section. A leading corrected-text marker is always removed.
// Without a synonyms marker synonyms is nil. Lines that do not look like
// "mot: a, b" are skipped.
func ParseCorrection(text string) (string, map[string][]string) {
	corrected, rest, found := strings.Cut(text, SynonymsSectionMarker)
	if !found {
		trimmed := strings.TrimSpace(text)
		if after, ok := strings.CutPrefix(trimmed, CorrectedSectionMarker); ok {
			return strings.TrimSpace(after), nil
		}
		return text, nil
	}

	corrected = strings.Replace(corrected, CorrectedSectionMarker, "", 1)
	corrected = strings.TrimSpace(corrected)

	synonyms := make(map[string][]string)
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		word, list, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		var alternatives []string
		for _, s := range strings.Split(list, ",") {
			if s = strings.TrimSpace(s); s != "" {
				alternatives = append(alternatives, s)
			}
		}
		if len(alternatives) > 0 {
			synonyms[word] = alternatives
		}
	}
	return corrected, synonyms
}
