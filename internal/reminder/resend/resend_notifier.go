package resend

import (
	"bytes"
	"context"
	"html/template"

	"github.com/resend/resend-go/v2"
)

// Notifier emails due reminders through Resend.
type Notifier struct {
	ApiKey string
	From   string
	Email  string
}

const htmlTemplate = `
<p>Habit Reminder 🔔</p>
<ul>
{{range .Habits}}
  <li>Time to work on: {{.}}</li>
{{end}}
</ul>
`

var tmpl = template.Must(template.New("email").Parse(htmlTemplate))

func (r *Notifier) Notify(ctx context.Context, habits []string) error {
	body, err := render(habits)
	if err != nil {
		return err
	}

	from := r.From
	if from == "" {
		from = "onboarding@resend.dev"
	}

	client := resend.NewClient(r.ApiKey)
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{r.Email},
		Subject: "Habit Reminder",
		Html:    body,
	}

	_, err = client.Emails.SendWithContext(ctx, params)
	return err
}

func render(habits []string) (string, error) {
	data := struct {
		Habits []string
	}{
		Habits: habits,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
