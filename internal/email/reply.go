package email

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanReply strips quoted text, reply markers, and signatures from an
// incoming email body, keeping only the lines the sender actually wrote.
func CleanReply(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		// Quoted previous message.
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		// Reply header ("On ... wrote:") and everything after it.
		if strings.HasPrefix(trimmed, "On ") && strings.HasSuffix(trimmed, "wrote:") {
			break
		}
		// Signature delimiter and everything after it.
		if trimmed == "--" || trimmed == "-- " {
			break
		}
		// Forwarded-message marker.
		if strings.Contains(trimmed, "---------- Forwarded message") {
			break
		}

		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// HTMLToText extracts readable text from an HTML email body. Used when a
// reply webhook delivers only an HTML part. Script and style contents are
// dropped; block elements become line breaks.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()

	var sb strings.Builder
	doc.Find("p, div, li, h1, h2, h3, h4, br").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})

	out := strings.TrimSpace(sb.String())
	if out == "" {
		// No block structure; fall back to the document text.
		out = strings.TrimSpace(doc.Text())
	}
	return out, nil
}
