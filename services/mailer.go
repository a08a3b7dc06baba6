package services

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/kasalashiva/temple-meals/models"
	"github.com/kasalashiva/temple-meals/utils"
)

// Mailer delivers the two notification messages of the booking workflow.
// Each send returns delivered/not-delivered; failures are logged and swallowed,
// they never block or reverse the state change that triggered them.
type Mailer interface {
	SendRequestToAdmin(m *models.MealRequest, adminEmail, approveLink, rejectLink string) bool
	SendDecisionToOwner(m *models.MealRequest, ownerEmail string, status models.MealStatus) bool
}

// SMTPMailer sends over SMTP, configured from SMTP_HOST / SMTP_PORT /
// SMTP_USER / SMTP_PASS / SMTP_FROM.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTPMailer() *SMTPMailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@temple-meals.com"
	}
	return &SMTPMailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: from,
	}
}

func (s *SMTPMailer) send(to, subject, htmlBody string) bool {
	if s.host == "" {
		utils.ErrorLogger.Printf("SMTP not configured, cannot send %q to %s", subject, to)
		return false
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	if err := dialer.DialAndSend(msg); err != nil {
		utils.ErrorLogger.Printf("Error sending email to %s: %v", to, err)
		return false
	}
	utils.InfoLogger.Printf("Email sent to %s: %s", to, subject)
	return true
}

func (s *SMTPMailer) SendRequestToAdmin(m *models.MealRequest, adminEmail, approveLink, rejectLink string) bool {
	body := fmt.Sprintf(`
		<h2>New Prasadam Request</h2>
		<p><strong>User:</strong> %s</p>
		<p><strong>Phone:</strong> %s</p>
		<p><strong>Temple:</strong> %s</p>
		<p><strong>Date:</strong> %s</p>
		<p><strong>Category:</strong> %s</p>
		<p><strong>Morning Count:</strong> %d</p>
		<p><strong>Evening Count:</strong> %d</p>
		<p><strong>Bill Amount:</strong> %s</p>
		<hr>
		<h3>Action Required</h3>
		<p><a href="%s">Approve Request</a> &nbsp; <a href="%s">Reject Request</a></p>
		<p style="color:#666;font-size:12px;">This is an automated email. Please do not reply.</p>`,
		m.UserName, m.UserPhone, m.UserTemple, m.Date, m.Category,
		m.MorningCount, m.EveningCount, utils.FormatCurrencyINR(m.BillAmount),
		approveLink, rejectLink)

	subject := fmt.Sprintf("New Prasadam Request - %s - %s", m.Date, m.UserName)
	return s.send(adminEmail, subject, body)
}

func (s *SMTPMailer) SendDecisionToOwner(m *models.MealRequest, ownerEmail string, status models.MealStatus) bool {
	statusText := "Rejected"
	if status == models.MealApproved {
		statusText = "Approved"
	}

	body := fmt.Sprintf(`
		<h2>Prasadam Request %s</h2>
		<p>Dear %s,</p>
		<p>Your prasadam request has been <strong>%s</strong>.</p>
		<ul>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Category:</strong> %s</li>
			<li><strong>Morning Count:</strong> %d</li>
			<li><strong>Evening Count:</strong> %d</li>
			<li><strong>Bill Amount:</strong> %s</li>
		</ul>
		<p style="color:#666;font-size:12px;">This is an automated email. Please do not reply.</p>`,
		statusText, m.UserName, statusText, m.Date, m.Category,
		m.MorningCount, m.EveningCount, utils.FormatCurrencyINR(m.BillAmount))

	subject := fmt.Sprintf("Prasadam Request %s - %s", statusText, m.Date)
	return s.send(ownerEmail, subject, body)
}
