// Package render turns a preference spec and a story selection into a
// finished newsletter: a subject line plus a self-contained, inline-styled
// HTML body safe to embed directly in an email.
//
// Rendering is deterministic: identical spec, stories, and date produce
// byte-identical output. The date is an explicit argument, never read from
// a hidden clock.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"newsly/internal/core"
	"newsly/internal/prefs"
)

// Intro sentences by tone. Unmatched tones use the professional row.
var intros = map[string]string{
	prefs.ToneProfessional: "Here are the top stories from HackerNews that match your interests:",
	prefs.ToneCasual:       "Hey! Check out these cool stories I found for you on HN:",
	prefs.ToneTechnical:    "Technical digest: Key developments in your areas of interest:",
}

const bodyTemplate = `
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
        <div style="text-align: center; margin-bottom: 30px;">
          <h1 style="color: #ff6600; margin: 0;">🗞️ Your HackerNews Digest</h1>
          <p style="color: #666; margin: 10px 0 0 0;">{{.Date}}</p>
        </div>

        <p style="color: #333; line-height: 1.6;">{{.Intro}}</p>
{{range .Stories}}
        <div style="margin: 20px 0; padding: 15px; border-left: 3px solid #ff6600; background: #f9f9f9;">
          <h3 style="margin: 0 0 8px 0; color: #333;">
            <a href="{{.URL}}" style="color: #000; text-decoration: none;">{{.Title}}</a>
          </h3>
          <div style="color: #666; font-size: 12px; margin-bottom: 8px;">
            {{.Points}} points | {{.Comments}} comments | by {{.Author}}
          </div>
{{- if $.IncludeAnalysis}}
          <p style="color: #555; font-style: italic; margin: 8px 0 0 0;">💡 This story relates to {{.Category}} and aligns with your interest in {{$.TopicsJoined}}.</p>
{{- end}}
        </div>
{{end}}
        <div style="margin-top: 30px; padding: 15px; background: #f0f0f0; border-radius: 5px;">
          <h4 style="margin: 0 0 10px 0; color: #333;">📊 Your Preferences</h4>
          <p style="margin: 0; color: #666; font-size: 14px;">
            <strong>Topics:</strong> {{.TopicsLine}}<br>
            <strong>Tone:</strong> {{.Tone}}<br>
            <strong>Length:</strong> {{.Length}}<br>
            <strong>Analysis:</strong> {{.AnalysisLabel}}
          </p>
        </div>

        <div style="margin-top: 20px; text-align: center; color: #999; font-size: 12px;">
          <p>Reply to this email with feedback to improve your next digest!</p>
        </div>
      </div>
`

var bodyTmpl = template.Must(template.New("newsletter").Parse(bodyTemplate))

type templateData struct {
	Date            string
	Intro           string
	Stories         []core.Story
	IncludeAnalysis bool
	TopicsJoined    string
	TopicsLine      string
	Tone            string
	Length          string
	AnalysisLabel   string
}

// Intro returns the intro sentence for a tone, defaulting to the
// professional one for unknown tones.
func Intro(tone string) string {
	if intro, ok := intros[tone]; ok {
		return intro
	}
	return intros[prefs.ToneProfessional]
}

// Subject builds the subject line for an issue of n stories on the given
// date. The tone appears verbatim, including unknown values.
func Subject(n int, tone string, date time.Time) string {
	return fmt.Sprintf("Your HackerNews Digest: %d %s stories - %s", n, tone, FormatDate(date))
}

// FormatDate renders a date the way it is embedded in subjects and bodies.
func FormatDate(date time.Time) string {
	return date.Format("1/2/2006")
}

// Newsletter renders the complete issue. It cannot fail on any resolvable
// spec: every spec field has a default and every story carries a category,
// so the only error source is the template machinery itself.
func Newsletter(spec prefs.Spec, stories []core.Story, date time.Time) (core.NewsletterContent, error) {
	topicsJoined := strings.Join(spec.Topics, ", ")
	topicsLine := topicsJoined
	if topicsLine == "" {
		topicsLine = "All topics"
	}
	analysisLabel := "Disabled"
	if spec.IncludeAnalysis {
		analysisLabel = "Enabled"
	}

	data := templateData{
		Date:            FormatDate(date),
		Intro:           Intro(spec.Tone),
		Stories:         stories,
		IncludeAnalysis: spec.IncludeAnalysis,
		TopicsJoined:    topicsJoined,
		TopicsLine:      topicsLine,
		Tone:            spec.Tone,
		Length:          spec.Length,
		AnalysisLabel:   analysisLabel,
	}

	var buf bytes.Buffer
	if err := bodyTmpl.Execute(&buf, data); err != nil {
		return core.NewsletterContent{}, fmt.Errorf("render newsletter body: %w", err)
	}

	return core.NewsletterContent{
		Subject: Subject(len(stories), spec.Tone, date),
		Content: buf.String(),
	}, nil
}
