package utils

import (
	"os"

	"net/smtp"
)

func SendMail(email string, message []byte) {
	from := "hello.katiopa@gmail.com"
	password := os.Getenv("GOOGLE_SMTP_MDP")
	if password == "" {
		LogInfo("GOOGLE_SMTP_MDP not defined, email sending skipped")
		return
	}
	to := email

	smtpHost := "smtp.gmail.com"
	smtpPort := "587"
	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, message)
	if err != nil {
		LogError(err, "Error sending email")
		return
	}

	LogSuccess("Email sent successfully")
}
