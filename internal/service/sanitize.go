package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ugcPolicy strips anything outside the usual user-generated-content tags.
// Post and comment bodies pass through it before hitting the database.
var ugcPolicy = bluemonday.UGCPolicy()

func sanitizeContent(content string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(content))
}
