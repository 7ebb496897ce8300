package events

import (
	"bytes"
	"html/template"
	"time"

	"wayfare/models"
)

var newsletterTmpl = template.Must(template.New("newsletter").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Events picked for you</h2>
  <p>Hi {{.Name}},</p>
  <p>Here is what is coming up around your interests:</p>
  <ul>
  {{range .Events}}
    <li>
      <strong>{{.Title}}</strong> &mdash; {{.City}}, {{.StartDate.Format "January 2, 2006"}}<br/>
      {{.Description}}
    </li>
  {{end}}
  </ul>
  <p style="color: #888; font-size: 12px;">Wayfare &middot; {{.Year}}</p>
</body>
</html>`))

func renderNewsletter(name string, eventList []models.Event) (string, error) {
	var buf bytes.Buffer
	err := newsletterTmpl.Execute(&buf, map[string]any{
		"Name":   name,
		"Events": eventList,
		"Year":   time.Now().Year(),
	})
	return buf.String(), err
}
