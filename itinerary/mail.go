package itinerary

import (
	"bytes"
	"html/template"
	"time"

	"wayfare/models"
)

var dailyScheduleTmpl = template.Must(template.New("daily").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Your day {{.Day.Day}} in {{.City}}</h2>
  <p>Hi {{.Name}},</p>
  <p>Here is what we planned for you today: <strong>{{.Day.Title}}</strong></p>
  <ul>
  {{range .Day.Stages}}
    <li>
      <strong>{{.Period}}</strong> &mdash; {{.Title}} ({{.Cost}}, ~{{.AvgDuration}} min)<br/>
      {{.Description}}
    </li>
  {{end}}
  </ul>
  <p>Enjoy your trip!</p>
  <p style="color: #888; font-size: 12px;">Wayfare &middot; {{.Year}}</p>
</body>
</html>`))

var docsReminderTmpl = template.Must(template.New("docs").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Documents for your trip to {{.City}}</h2>
  <p>Hi {{.Name}},</p>
  <p>Your trip starts on {{.StartDate}}. Check that your documents are in order:</p>
  <h3>Mandatory</h3>
  <ul>
  {{range .Docs.Mandatory}}
    <li><strong>{{.Name}}</strong>: {{.Description}}</li>
  {{end}}
  </ul>
  <h3>Recommended</h3>
  <ul>
  {{range .Docs.Recommended}}
    <li><strong>{{.Name}}</strong>: {{.Description}}</li>
  {{end}}
  </ul>
  <p style="color: #888; font-size: 12px;">Wayfare &middot; {{.Year}}</p>
</body>
</html>`))

func renderDailySchedule(name, city string, day models.DayPlan) (string, error) {
	var buf bytes.Buffer
	err := dailyScheduleTmpl.Execute(&buf, map[string]any{
		"Name": name,
		"City": city,
		"Day":  day,
		"Year": time.Now().Year(),
	})
	return buf.String(), err
}

func renderDocsReminder(name, city string, startDate time.Time, docs *models.Docs) (string, error) {
	var buf bytes.Buffer
	err := docsReminderTmpl.Execute(&buf, map[string]any{
		"Name":      name,
		"City":      city,
		"StartDate": startDate.Format("January 2, 2006"),
		"Docs":      docs,
		"Year":      time.Now().Year(),
	})
	return buf.String(), err
}
