package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	TemplateMagicLink        = "magic_link"
	TemplateBookingConfirmed = "booking_confirmed"
	TemplateBookingCanceled  = "booking_canceled"
	TemplateBookingCompleted = "booking_completed"
)

// Service handles email sending with templates
type Service struct {
	client       Client
	hotelName    string
	templates    map[string]*template.Template
	baseTemplate *template.Template
	queue        chan *QueuedEmail
	wg           sync.WaitGroup
}

// QueuedEmail represents an email in the send queue
type QueuedEmail struct {
	To           string
	ToName       string
	Subject      string
	TemplateName string
	Data         interface{}
}

// BookingDetails is the data rendered into booking emails
type BookingDetails struct {
	Reference   string
	GuestName   string
	GuestEmail  string
	RoomNumber  string
	RoomType    string
	CheckIn     string
	CheckOut    string
	CancelBy    string
	Nights      int
	TotalPrice  float64
	BookingsURL string
}

// NewService creates email service and starts its queue worker
func NewService(client Client, hotelName string) *Service {
	s := &Service{
		client:    client,
		hotelName: hotelName,
		templates: make(map[string]*template.Template),
		queue:     make(chan *QueuedEmail, 100),
	}

	s.baseTemplate = template.Must(template.New("base").Parse(BaseTemplate))
	s.loadTemplates()

	s.wg.Add(1)
	go s.worker()

	return s
}

func (s *Service) loadTemplates() {
	templates := map[string]string{
		TemplateMagicLink:        MagicLinkTemplate,
		TemplateBookingConfirmed: BookingConfirmedTemplate,
		TemplateBookingCanceled:  BookingCanceledTemplate,
		TemplateBookingCompleted: BookingCompletedTemplate,
	}

	for name, content := range templates {
		tmpl, err := template.New(name).Parse(content)
		if err != nil {
			log.Error().Err(err).Str("template", name).Msg("Failed to parse email template")
			continue
		}
		s.templates[name] = tmpl
	}
}

// worker processes queued emails asynchronously
func (s *Service) worker() {
	defer s.wg.Done()

	for email := range s.queue {
		if err := s.send(context.Background(), email); err != nil {
			log.Error().Err(err).
				Str("to", email.To).
				Str("template", email.TemplateName).
				Msg("Failed to send email")
		}
	}
}

// Render renders a template inside the base layout
func (s *Service) Render(templateName string, data interface{}) (string, error) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return "", fmt.Errorf("email template %q not found", templateName)
	}

	var contentBuf bytes.Buffer
	if err := tmpl.Execute(&contentBuf, data); err != nil {
		return "", err
	}

	var htmlBuf bytes.Buffer
	if err := s.baseTemplate.Execute(&htmlBuf, map[string]interface{}{
		"HotelName": s.hotelName,
		"Content":   template.HTML(contentBuf.String()),
	}); err != nil {
		return "", err
	}
	return htmlBuf.String(), nil
}

func (s *Service) send(ctx context.Context, email *QueuedEmail) error {
	html, err := s.Render(email.TemplateName, email.Data)
	if err != nil {
		return err
	}

	return s.client.Send(ctx, &Message{
		To:          email.To,
		ToName:      email.ToName,
		Subject:     email.Subject,
		HTMLContent: html,
	})
}

// Queue adds an email to the async send queue
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	select {
	case s.queue <- &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	}:
	default:
		log.Warn().Str("to", to).Msg("Email queue full, dropping email")
	}
}

// SendSync sends an email synchronously (blocking)
func (s *Service) SendSync(ctx context.Context, to, toName, templateName, subject string, data interface{}) error {
	return s.send(ctx, &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	})
}

// Close stops the email worker after draining the queue
func (s *Service) Close() {
	close(s.queue)
	s.wg.Wait()
}

// SendMagicLink queues a passwordless sign-in email
func (s *Service) SendMagicLink(to, name, link, expiresIn string) {
	s.Queue(to, name, TemplateMagicLink, "Your sign-in link for "+s.hotelName, map[string]string{
		"Name":      name,
		"Link":      link,
		"ExpiresIn": expiresIn,
	})
}

// SendBookingNotice renders and sends a booking email immediately
func (s *Service) SendBookingNotice(ctx context.Context, templateName string, b *BookingDetails) error {
	var subject string
	switch templateName {
	case TemplateBookingConfirmed:
		subject = "Booking confirmed: room " + b.RoomNumber
	case TemplateBookingCanceled:
		subject = "Booking canceled: " + b.Reference
	case TemplateBookingCompleted:
		subject = "Thank you for staying at " + s.hotelName
	default:
		return fmt.Errorf("not a booking template: %s", templateName)
	}
	return s.SendSync(ctx, strings.ToLower(b.GuestEmail), b.GuestName, templateName, subject, b)
}
