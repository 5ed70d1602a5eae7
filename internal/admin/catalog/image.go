package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

const thumbnailURLFormat = "https://drive.google.com/thumbnail?id=%s&sz=w1200"

// Checked in order; the first non-empty capture wins.
var imageIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`drive\.google\.com/file/d/([^/]+)`),
	regexp.MustCompile(`[?&]id=([^&]+)`),
	regexp.MustCompile(`drive\.google\.com/thumbnail\?id=([^&]+)`),
	regexp.MustCompile(`drive\.google\.com/uc\?export=view&id=([^&]+)`),
}

// ResolveImage rewrites hosted-file share links into the thumbnail URL that
// embeds reliably as an <img>. References without a recognisable file id are
// returned trimmed but otherwise untouched.
func ResolveImage(ref string) string {
	u := strings.TrimSpace(ref)
	if u == "" {
		return ""
	}
	id := imageFileID(u)
	if id == "" {
		return u
	}
	return fmt.Sprintf(thumbnailURLFormat, id)
}

func imageFileID(u string) string {
	for _, re := range imageIDPatterns {
		if m := re.FindStringSubmatch(u); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	return ""
}
