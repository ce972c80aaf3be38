// Package template renders channel-ready content for each notification type.
// Rendering is a pure function of the type and context and never fails;
// unknown types fall back to a generic body built from the notification's
// own title and message.
package template

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"carebook/internal/domain"
)

// Context carries the structured data a template may use. Every field is
// optional; templates omit sections whose data is absent.
type Context struct {
	RecipientName   string
	PatientName     string
	DoctorName      string
	AppointmentAt   *time.Time
	AppointmentType string
	ClinicName      string
	ClinicAddress   string
	MeetingLink     string
	Amount          string
	Title           string
	Message         string
}

type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

type Renderer interface {
	Render(t domain.NotificationType, ctx Context) Rendered
}

type renderer struct{}

func NewRenderer() Renderer {
	return renderer{}
}

const layoutTmpl = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 560px; margin: 0 auto;">
  <h2 style="color: #0f766e;">{{.Subject}}</h2>
  {{if .Ctx.RecipientName}}<p>Hi {{.Ctx.RecipientName}},</p>{{end}}
  {{template "content" .Ctx}}
  {{if .Ctx.MeetingLink}}<p><a href="{{.Ctx.MeetingLink}}" style="background-color: #0f766e; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Join consultation</a></p>{{end}}
  <p style="color: #6b7280; font-size: 13px;">CareBook — your appointments, organized.</p>
</body>
</html>`

var contentTemplates = map[domain.NotificationType]string{
	domain.NotifAppointmentBooked: `{{define "content"}}
<p>Your appointment{{if .DoctorName}} with {{.DoctorName}}{{end}} has been booked{{if .AppointmentAt}} for <strong>{{.AppointmentAt.Format "Mon, 02 Jan 2006 15:04"}}</strong>{{end}}.</p>
{{if .ClinicName}}<p>{{.ClinicName}}{{if .ClinicAddress}}, {{.ClinicAddress}}{{end}}</p>{{end}}
{{end}}`,
	domain.NotifAppointmentAccepted: `{{define "content"}}
<p>{{if .DoctorName}}{{.DoctorName}} has confirmed{{else}}Your doctor has confirmed{{end}} your appointment{{if .AppointmentAt}} on <strong>{{.AppointmentAt.Format "Mon, 02 Jan 2006 15:04"}}</strong>{{end}}.</p>
{{end}}`,
	domain.NotifAppointmentRejected: `{{define "content"}}
<p>Unfortunately your appointment request{{if .DoctorName}} with {{.DoctorName}}{{end}} was declined. You can book another slot at any time.</p>
{{end}}`,
	domain.NotifAppointmentCancelled: `{{define "content"}}
<p>Your appointment{{if .DoctorName}} with {{.DoctorName}}{{end}}{{if .AppointmentAt}} on {{.AppointmentAt.Format "Mon, 02 Jan 2006 15:04"}}{{end}} has been cancelled.</p>
{{end}}`,
	domain.NotifAppointmentRescheduled: `{{define "content"}}
<p>Your appointment{{if .DoctorName}} with {{.DoctorName}}{{end}} has been moved{{if .AppointmentAt}} to <strong>{{.AppointmentAt.Format "Mon, 02 Jan 2006 15:04"}}</strong>{{end}}.</p>
{{end}}`,
	domain.NotifAppointmentReminder: `{{define "content"}}
<p>{{.Message}}</p>
{{if .DoctorName}}<p>Doctor: {{.DoctorName}}</p>{{end}}
{{if .AppointmentAt}}<p>Time: <strong>{{.AppointmentAt.Format "Mon, 02 Jan 2006 15:04"}}</strong></p>{{end}}
{{if .ClinicName}}<p>Location: {{.ClinicName}}{{if .ClinicAddress}}, {{.ClinicAddress}}{{end}}</p>{{end}}
{{end}}`,
	domain.NotifMeetingLinkReady: `{{define "content"}}
<p>The video consultation link for your appointment{{if .AppointmentAt}} on {{.AppointmentAt.Format "Mon, 02 Jan 2006 15:04"}}{{end}} is ready.</p>
{{end}}`,
	domain.NotifPaymentConfirmed: `{{define "content"}}
<p>Your payment{{if .Amount}} of <strong>{{.Amount}}</strong>{{end}} has been confirmed. Thank you!</p>
{{end}}`,
	domain.NotifDoctorVerified: `{{define "content"}}
<p>Congratulations — your doctor profile has been verified. Patients can now book appointments with you.</p>
{{end}}`,
	domain.NotifDoctorRejected: `{{define "content"}}
<p>Your doctor profile could not be verified with the documents provided. Please review your submission and try again.</p>
{{end}}`,
}

const genericContent = `{{define "content"}}<p>{{.Message}}</p>{{end}}`

var subjects = map[domain.NotificationType]string{
	domain.NotifAppointmentBooked:      "Appointment Booked",
	domain.NotifAppointmentAccepted:    "Appointment Confirmed",
	domain.NotifAppointmentRejected:    "Appointment Declined",
	domain.NotifAppointmentCancelled:   "Appointment Cancelled",
	domain.NotifAppointmentRescheduled: "Appointment Rescheduled",
	domain.NotifAppointmentReminder:    "Appointment Reminder",
	domain.NotifMeetingLinkReady:       "Your Consultation Link Is Ready",
	domain.NotifPaymentConfirmed:       "Payment Confirmed",
	domain.NotifDoctorVerified:         "Profile Verified",
	domain.NotifDoctorRejected:         "Profile Verification Update",
}

var compiled = func() map[domain.NotificationType]*template.Template {
	m := make(map[domain.NotificationType]*template.Template, len(contentTemplates))
	for t, content := range contentTemplates {
		m[t] = template.Must(template.Must(template.New(string(t)).Parse(layoutTmpl)).Parse(content))
	}
	m[""] = template.Must(template.Must(template.New("generic").Parse(layoutTmpl)).Parse(genericContent))
	return m
}()

func (renderer) Render(t domain.NotificationType, ctx Context) Rendered {
	subject := subjects[t]
	if subject == "" {
		subject = ctx.Title
	}
	if subject == "" {
		subject = "CareBook Notification"
	}

	tmpl, ok := compiled[t]
	if !ok {
		tmpl = compiled[""]
	}

	var buf bytes.Buffer
	data := struct {
		Subject string
		Ctx     Context
	}{Subject: subject, Ctx: ctx}

	html := ""
	if err := tmpl.Execute(&buf, data); err == nil {
		html = buf.String()
	} else {
		html = fmt.Sprintf("<p>%s</p>", template.HTMLEscapeString(ctx.Message))
	}

	return Rendered{
		Subject: subject,
		HTML:    html,
		Text:    plainText(subject, ctx),
	}
}

// plainText builds the text/plain alternative from the same context.
func plainText(subject string, ctx Context) string {
	var b strings.Builder
	b.WriteString(subject)
	b.WriteString("\n\n")
	if ctx.RecipientName != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", ctx.RecipientName)
	}
	if ctx.Message != "" {
		b.WriteString(ctx.Message)
		b.WriteString("\n")
	}
	if ctx.DoctorName != "" {
		fmt.Fprintf(&b, "Doctor: %s\n", ctx.DoctorName)
	}
	if ctx.AppointmentAt != nil {
		fmt.Fprintf(&b, "Time: %s\n", ctx.AppointmentAt.Format("Mon, 02 Jan 2006 15:04"))
	}
	if ctx.ClinicName != "" {
		loc := ctx.ClinicName
		if ctx.ClinicAddress != "" {
			loc += ", " + ctx.ClinicAddress
		}
		fmt.Fprintf(&b, "Location: %s\n", loc)
	}
	if ctx.MeetingLink != "" {
		fmt.Fprintf(&b, "Join: %s\n", ctx.MeetingLink)
	}
	return b.String()
}
