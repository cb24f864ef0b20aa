package email_processor

import (
	"strings"

	"github.com/recruitstack/recruitstack/internal/utils"
)

// DeriveCandidateName prefers the sender display name and falls back to the address local part
func DeriveCandidateName(displayName, address string) string {
	name := utils.CollapseWhitespace(strings.Trim(displayName, `"' `))
	if name != "" && !strings.Contains(name, "@") {
		return name
	}

	local := utils.ExtractLocalPartFromEmail(address)
	if local == "" {
		return name
	}
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)
	return utils.CollapseWhitespace(local)
}
