// Package report renders the run aggregate into the digest document.
// Presentation only: the decision engine hands over a finalized
// RunResult and never sees markup.
package report

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

// HTMLRenderer is a core.Renderer producing the HTML digest
type HTMLRenderer struct {
	subjectMarker string
	tmpl          *template.Template
	logger        *zap.Logger
}

// NewHTMLRenderer creates a new HTML renderer. The subject marker is
// included verbatim in every subject line so later runs can recognize
// the digest as their own.
func NewHTMLRenderer(subjectMarker string, logger *zap.Logger) (*HTMLRenderer, error) {
	tmpl, err := template.New("digest").Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &HTMLRenderer{
		subjectMarker: subjectMarker,
		tmpl:          tmpl,
		logger:        logger,
	}, nil
}

// section is one category block in the rendered digest
type section struct {
	Title        string
	Items        []core.TriageItem
	AutoArchived int
}

// digestView is the template's root data
type digestView struct {
	Date              string
	Mode              string
	Processed         int
	Listed            int
	ActionSections    []section
	ReferenceSections []section
	SocialDigests     map[string]string
	AgedArchived      map[string]int
	Errors            []core.RunError
}

// sectionTitles maps categories to human-readable headings
var sectionTitles = map[core.Category]string{
	core.CategoryUrgent:             "Urgent",
	core.CategoryTodo:               "To Do",
	core.CategoryWaiting:            "Waiting On",
	core.CategorySecurityAlert:      "Security Alerts",
	core.CategoryCreatorNewsletters: "Newsletters",
	core.CategorySocialCommunity:    "Social & Community",
	core.CategoryPromotions:         "Promotions",
	core.CategoryFinancial:          "Financial",
	core.CategoryPurchases:          "Purchases",
	core.CategoryMisc:               "Everything Else",
}

// Render produces the digest subject and HTML body
func (r *HTMLRenderer) Render(result *core.RunResult) (string, string, error) {
	view := digestView{
		Date:          result.StartedAt.Format("Mon, 2 Jan 2006"),
		Mode:          string(result.Mode),
		Processed:     result.Processed,
		Listed:        result.TotalListed(),
		SocialDigests: result.SocialDigests,
		AgedArchived:  map[string]int{},
		Errors:        result.Errors,
	}

	for _, c := range core.ActionCategories {
		if items := result.Buckets[c]; len(items) > 0 {
			view.ActionSections = append(view.ActionSections, section{
				Title: sectionTitles[c],
				Items: items,
			})
		}
	}
	for _, c := range core.ReferenceCategories {
		items := result.Buckets[c]
		archived := result.AutoArchived[c]
		if len(items) == 0 && archived == 0 {
			continue
		}
		view.ReferenceSections = append(view.ReferenceSections, section{
			Title:        sectionTitles[c],
			Items:        items,
			AutoArchived: archived,
		})
	}
	for c, n := range result.AgedArchived {
		view.AgedArchived[sectionTitles[c]] = n
	}

	var body strings.Builder
	if err := r.tmpl.Execute(&body, view); err != nil {
		return "", "", fmt.Errorf("execute digest template: %w", err)
	}

	subject := fmt.Sprintf("%s — %s", r.subjectMarker, view.Date)
	r.logger.Debug("Rendered digest",
		zap.Int("listed", view.Listed),
		zap.Int("errors", len(view.Errors)))
	return subject, body.String(), nil
}

const digestTemplate = `<html>
<body style="font-family: sans-serif; max-width: 640px;">
<h2>Inbox triage for {{.Date}}</h2>
<p>{{.Processed}} messages processed ({{.Mode}} mode), {{.Listed}} listed below.</p>

{{range .ActionSections}}
<h3>{{.Title}}</h3>
<ul>
{{range .Items}}
<li>
<strong>{{.Email.Subject}}</strong> &mdash; {{.Email.From}}<br>
{{.Classification.Summary}}
{{if .AgingWarning}}<br><em>{{.AgingWarning}}</em>{{end}}
</li>
{{end}}
</ul>
{{end}}

{{range .ReferenceSections}}
<h3>{{.Title}}</h3>
{{if .Items}}
<ul>
{{range .Items}}
<li>
<strong>{{.Email.Subject}}</strong> &mdash; {{.Email.From}}<br>
{{.Classification.Summary}}
{{if .AgingWarning}}<br><em>{{.AgingWarning}}</em>{{end}}
</li>
{{end}}
</ul>
{{end}}
{{if .AutoArchived}}<p><em>{{.AutoArchived}} auto-archived</em></p>{{end}}
{{end}}

{{if .SocialDigests}}
<h3>Platform digests</h3>
<ul>
{{range $platform, $digest := .SocialDigests}}
<li><strong>{{$platform}}</strong>: {{$digest}}</li>
{{end}}
</ul>
{{end}}

{{if .AgedArchived}}
<h3>Aged out</h3>
<ul>
{{range $title, $count := .AgedArchived}}
<li>{{$title}}: {{$count}} archived after aging out</li>
{{end}}
</ul>
{{end}}

{{if .Errors}}
<h3>Errors</h3>
<ul>
{{range .Errors}}
<li>{{.Subject}} ({{.From}}): {{.Err}}</li>
{{end}}
</ul>
{{end}}
</body>
</html>
`
