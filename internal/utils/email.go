package utils

import (
	"strings"
)

func ExtractLocalPartFromEmail(email string) string {
	local, _ := SplitEmail(email)
	return local
}

// SplitEmail handles both bare addresses and "Name <email@domain.com>"
func SplitEmail(email string) (string, string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ""
	}

	if strings.Contains(email, "<") && strings.Contains(email, ">") {
		startIdx := strings.LastIndex(email, "<") + 1
		endIdx := strings.LastIndex(email, ">")
		if startIdx > 0 && endIdx > startIdx {
			email = email[startIdx:endIdx]
		}
	}

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email, ""
	}
	return strings.TrimSpace(email[:at]), strings.TrimSpace(email[at+1:])
}
