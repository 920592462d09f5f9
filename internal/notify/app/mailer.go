package app

import (
	"net"
	"net/smtp"

	"video_audio_service/pkg/config"
)

// Mailer 寄送通知信
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer create by SMTP setting
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer create a SMTPMailer
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send 組出純文字信件並透過 smtp server 寄出
func (m *SMTPMailer) Send(to, subject, body string) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	// 本地 / 測試用的 smtp server 不一定開啟認證
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	msg := []byte("From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, msg)
}
