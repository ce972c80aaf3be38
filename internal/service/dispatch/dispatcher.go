package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"carebook/internal/domain"
	"carebook/internal/service/email"
	"carebook/internal/service/template"
)

// Dispatcher fans one notification out across its requested channels and
// reports a per-channel outcome. A channel the user has opted out of is
// omitted from the results entirely; it is a no-op, not a failure.
type Dispatcher interface {
	Dispatch(ctx context.Context, notif *domain.Notification, recipient *domain.User, pref *domain.NotificationPreference) []domain.ChannelResult
}

type dispatcher struct {
	renderer template.Renderer
	emailSvc email.Service
}

func NewDispatcher(renderer template.Renderer, emailSvc email.Service) Dispatcher {
	return &dispatcher{
		renderer: renderer,
		emailSvc: emailSvc,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, notif *domain.Notification, recipient *domain.User, pref *domain.NotificationPreference) []domain.ChannelResult {
	var results []domain.ChannelResult

	for _, raw := range notif.Channels {
		ch := domain.NotificationChannel(raw)

		switch ch {
		case domain.ChannelEmail:
			if !pref.ChannelEnabled(ch) || !pref.AllowsType(notif.Type) {
				continue
			}
			results = append(results, d.sendEmail(ctx, notif, recipient))

		case domain.ChannelInApp:
			if !pref.ChannelEnabled(ch) {
				continue
			}
			// the notification row itself is the in-app delivery
			now := time.Now()
			results = append(results, domain.ChannelResult{
				Channel:     ch,
				Success:     true,
				DeliveredAt: &now,
			})

		case domain.ChannelPush:
			if !pref.ChannelEnabled(ch) {
				continue
			}
			// stub transport; extension point for a real push provider
			now := time.Now()
			results = append(results, domain.ChannelResult{
				Channel:     ch,
				Success:     true,
				DeliveredAt: &now,
			})

		default:
			results = append(results, domain.ChannelResult{
				Channel: ch,
				Success: false,
				Error:   "unknown channel",
			})
		}
	}

	return results
}

// sendEmail renders the notification and hands it to the transport. Transport
// errors are recorded on the result, never propagated, so a failing provider
// cannot abort sibling channels.
func (d *dispatcher) sendEmail(ctx context.Context, notif *domain.Notification, recipient *domain.User) domain.ChannelResult {
	rendered := d.renderer.Render(notif.Type, templateContext(notif, recipient))

	err := d.emailSvc.Send(ctx, email.Message{
		To:      recipient.Email,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	if err != nil {
		return domain.ChannelResult{
			Channel: domain.ChannelEmail,
			Success: false,
			Error:   err.Error(),
		}
	}

	now := time.Now()
	return domain.ChannelResult{
		Channel:     domain.ChannelEmail,
		Success:     true,
		DeliveredAt: &now,
	}
}

// templateContext decodes the notification's opaque data into the fields the
// renderer understands. Unknown keys are ignored; absent keys leave their
// sections out of the rendered body.
func templateContext(notif *domain.Notification, recipient *domain.User) template.Context {
	tctx := template.Context{
		RecipientName: recipient.FullName,
		Title:         notif.Title,
		Message:       notif.Message,
	}

	if len(notif.Data) == 0 {
		return tctx
	}

	var data struct {
		PatientName     string `json:"patient_name"`
		DoctorName      string `json:"doctor_name"`
		AppointmentAt   string `json:"appointment_at"`
		AppointmentType string `json:"appointment_type"`
		ClinicName      string `json:"clinic_name"`
		ClinicAddress   string `json:"clinic_address"`
		MeetingLink     string `json:"meeting_link"`
		Amount          string `json:"amount"`
	}
	if err := json.Unmarshal(notif.Data, &data); err != nil {
		return tctx
	}

	tctx.PatientName = data.PatientName
	tctx.DoctorName = data.DoctorName
	tctx.AppointmentType = data.AppointmentType
	tctx.ClinicName = data.ClinicName
	tctx.ClinicAddress = data.ClinicAddress
	tctx.MeetingLink = data.MeetingLink
	tctx.Amount = data.Amount

	if data.AppointmentAt != "" {
		if at, err := time.Parse(time.RFC3339, data.AppointmentAt); err == nil {
			tctx.AppointmentAt = &at
		}
	}

	return tctx
}
