// Package render shapes ranked commits into display values and writes the
// activity widget markup. Escaping happens in the template.
package render

import (
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/KOFI-GYIMAH/github-activity/internal/models"
	"github.com/dustin/go-humanize"
)

const (
	Placeholder = "Unable to load GitHub activity."

	DateLayout     = "Jan 2, 2006, 3:04 PM"
	shortSHALength = 7
	defaultMessage = "Commit"
)

// CommitView is one commit line. Values are raw; the template escapes them
// for their context, so unsafe URLs never reach an href.
type CommitView struct {
	Message  string `json:"message"`
	ShortSHA string `json:"short_sha"`
	RepoName string `json:"repo_name"`
	RepoURL  string `json:"repo_url"`
	Date     string `json:"date"`
	Relative string `json:"relative"`
}

// Activity is the whole widget: the commit lines and the owner's profile link.
type Activity struct {
	Owner      string       `json:"owner"`
	ProfileURL string       `json:"profile_url"`
	Commits    []CommitView `json:"commits"`
}

// Build formats records for display. Dates are shown in loc and
// the relative form is computed against now.
func Build(records []models.CommitRecord, owner string, loc *time.Location, now time.Time) Activity {
	if loc == nil {
		loc = time.UTC
	}

	activity := Activity{
		Owner:      owner,
		ProfileURL: "https://github.com/" + owner,
		Commits:    make([]CommitView, 0, len(records)),
	}

	for _, record := range records {
		view := CommitView{
			Message:  firstLine(record.Message),
			ShortSHA: ShortSHA(record.SHA),
			RepoName: record.Repository.Name,
			RepoURL:  record.Repository.HTMLURL,
		}
		if record.AuthorDate != nil {
			view.Date = record.AuthorDate.In(loc).Format(DateLayout)
			view.Relative = humanize.RelTime(*record.AuthorDate, now, "ago", "from now")
		}
		activity.Commits = append(activity.Commits, view)
	}

	return activity
}

func ShortSHA(sha string) string {
	if len(sha) <= shortSHALength {
		return sha
	}
	return sha[:shortSHALength]
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultMessage
	}
	return line
}

var widget = template.Must(template.New("widget").Parse(`{{if .Commits}}<div class="repo-item">
  <div class="repo-head">
    <div>
      <div class="repo-badge">Recent commits</div>
      <div class="repo-title">Latest activity</div>
      <div class="repo-desc">Across all public repositories</div>
    </div>
    <a class="repo-link" href="{{.ProfileURL}}" target="_blank">View GitHub</a>
  </div>
  <div class="commit-list">
{{- range .Commits}}
    <div class="commit-item">
      <div class="commit-message">{{.Message}}</div>
      <div class="commit-meta">
        <span class="commit-sha">{{.ShortSHA}}</span>
        <a class="commit-repo" href="{{.RepoURL}}" target="_blank">{{.RepoName}}</a>
        <span title="{{.Relative}}">{{.Date}}</span>
      </div>
    </div>
{{- end}}
  </div>
</div>
{{else}}<div class='repo-empty'>` + Placeholder + `</div>
{{end}}`))

// WriteHTML writes the widget markup, or the placeholder when there are no commits.
func WriteHTML(w io.Writer, activity Activity) error {
	return widget.Execute(w, activity)
}

func WritePlaceholder(w io.Writer) error {
	return WriteHTML(w, Activity{})
}
