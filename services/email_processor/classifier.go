package email_processor

import (
	"path/filepath"
	"strings"
)

var resumeExtensions = map[string]bool{
	"pdf":  true,
	"doc":  true,
	"docx": true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

var resumeKeywords = []string{"cv", "curriculum", "resume", "hoja de vida"}

// IsResumeCandidate decides from the file name alone whether an attachment may be a résumé
func IsResumeCandidate(filename string) bool {
	name := strings.ToLower(strings.TrimSpace(filename))
	if name == "" {
		return false
	}

	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if resumeExtensions[ext] {
		return true
	}

	for _, keyword := range resumeKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}
