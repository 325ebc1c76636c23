package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/env"
)

// SendMail sends an HTML email via SMTP.
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendActivationMail sends the account activation link after registration.
func SendActivationMail(to string, name string, token string) error {
	publicDomain := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000")
	link := fmt.Sprintf("%s/activate?token=%s", publicDomain, token)

	subject := "Activate your Parlay Golf Ventures account"
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Welcome to Parlay Golf Ventures. Please confirm your email address to activate your account:</p>"+
			"<p><a href=\"%s\">Activate account</a></p>"+
			"<p>If you did not sign up, you can ignore this email.</p>",
		name, link,
	)
	return SendMail(to, subject, body)
}

// SendContributionDecisionMail notifies a contributor that a submission was
// approved or rejected.
func SendContributionDecisionMail(to string, name string, title string, approved bool, note string) error {
	decision := "approved"
	if !approved {
		decision = "not approved"
	}

	subject := fmt.Sprintf("Your contribution \"%s\" was %s", title, decision)
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Your contribution <strong>%s</strong> was %s by our review team.</p>",
		name, title, decision,
	)
	if note != "" {
		body += fmt.Sprintf("<p>Reviewer note: %s</p>", note)
	}
	body += "<p>Thanks for being part of the community.</p>"

	return SendMail(to, subject, body)
}
