package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendVerificationCodeEmail mails a shopkeeper their one-time vetting
// code (async so the HTTP response is not delayed by SMTP).
func SendVerificationCodeEmail(to, code string) {
	go func() {
		host := os.Getenv("SMTP_HOST")
		portStr := os.Getenv("SMTP_PORT")
		username := os.Getenv("SMTP_USERNAME")
		password := os.Getenv("SMTP_PASSWORD")
		from := os.Getenv("SMTP_FROM")

		port, _ := strconv.Atoi(portStr)

		m := gomail.NewMessage()
		m.SetHeader("From", from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", "Your shopkeeper verification code")
		m.SetBody("text/html", fmt.Sprintf(
			"<p>Your verification code is <b>%s</b>.</p><p>It expires in 15 minutes.</p>", code))

		d := gomail.NewDialer(host, port, username, password)
		if err := d.DialAndSend(m); err != nil {
			log.Printf("failed to send verification email to %s: %v", to, err)
		}
	}()
}
