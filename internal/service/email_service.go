package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/tavolo-next/internal/config"
	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/models"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SetConfig 更新运行时邮件配置
func (s *EmailService) SetConfig(cfg *config.EmailConfig) {
	if cfg == nil {
		return
	}
	s.cfg = cfg
}

// OrderStatusEmailInput 订单状态邮件输入
type OrderStatusEmailInput struct {
	OrderNo       string
	Status        models.OrderStatus
	Total         models.Money
	Currency      string
	EstimatedTime *time.Time
	ProposedTime  *time.Time
	CancelReason  string
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(toEmail string, input OrderStatusEmailInput, locale string) error {
	subject, body := buildOrderStatusContent(input, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendCustomEmail 发送测试邮件或自定义邮件
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "SMTP 配置测试邮件"
	}
	body = strings.TrimSpace(body)
	if body == "" {
		body = "这是一封 SMTP 测试邮件，说明当前配置可正常发送。"
	}
	return s.sendTextEmail(toEmail, subject, body)
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return normalizeEmailSendError(sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	if s.cfg.UseTLS {
		return normalizeEmailSendError(sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
	}
	return normalizeEmailSendError(sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg)))
}

func buildOrderStatusContent(input OrderStatusEmailInput, locale string) (string, string) {
	if normalizeLocale(locale) == constants.LocaleZhCN {
		return buildOrderStatusContentZH(input)
	}
	return buildOrderStatusContentEN(input)
}

func buildOrderStatusContentZH(input OrderStatusEmailInput) (string, string) {
	statusLabel := orderStatusLabelZH(input.Status)
	subject := fmt.Sprintf("订单状态更新：%s", statusLabel)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "您的订单 %s 当前状态为：%s。\n", input.OrderNo, statusLabel)
	fmt.Fprintf(&buf, "订单金额：%s %s\n", input.Total.String(), input.Currency)
	switch input.Status {
	case models.OrderStatusPendingApproval:
		if input.ProposedTime != nil {
			fmt.Fprintf(&buf, "餐厅申请将送达时间调整为 %s，请确认或拒绝。\n", input.ProposedTime.Format("2006-01-02 15:04"))
		}
	case models.OrderStatusCanceled:
		if input.CancelReason != "" {
			fmt.Fprintf(&buf, "取消原因：%s\n", input.CancelReason)
		}
		buf.WriteString("已完成的支付将原路退回。\n")
	default:
		if input.EstimatedTime != nil {
			fmt.Fprintf(&buf, "预计送达/取餐时间：%s\n", input.EstimatedTime.Format("2006-01-02 15:04"))
		}
	}
	return subject, buf.String()
}

func buildOrderStatusContentEN(input OrderStatusEmailInput) (string, string) {
	statusLabel := orderStatusLabelEN(input.Status)
	subject := fmt.Sprintf("Order update: %s", statusLabel)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Your order %s is now %s.\n", input.OrderNo, statusLabel)
	fmt.Fprintf(&buf, "Order total: %s %s\n", input.Total.String(), input.Currency)
	switch input.Status {
	case models.OrderStatusPendingApproval:
		if input.ProposedTime != nil {
			fmt.Fprintf(&buf, "The restaurant proposed a new delivery time of %s. Please approve or reject it.\n", input.ProposedTime.Format("2006-01-02 15:04"))
		}
	case models.OrderStatusCanceled:
		if input.CancelReason != "" {
			fmt.Fprintf(&buf, "Cancellation reason: %s\n", input.CancelReason)
		}
		buf.WriteString("Completed payments will be refunded.\n")
	default:
		if input.EstimatedTime != nil {
			fmt.Fprintf(&buf, "Estimated delivery/pickup time: %s\n", input.EstimatedTime.Format("2006-01-02 15:04"))
		}
	}
	return subject, buf.String()
}

func orderStatusLabelZH(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusPending:
		return "待确认"
	case models.OrderStatusConfirmed:
		return "已确认"
	case models.OrderStatusPreparing:
		return "备餐中"
	case models.OrderStatusReady:
		return "备餐完成"
	case models.OrderStatusOutForDelivery:
		return "配送中"
	case models.OrderStatusDelivered:
		return "已送达"
	case models.OrderStatusCompleted:
		return "已完成"
	case models.OrderStatusCanceled:
		return "已取消"
	case models.OrderStatusPendingApproval:
		return "待顾客确认延迟"
	default:
		return string(status)
	}
}

func orderStatusLabelEN(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusPending:
		return "pending confirmation"
	case models.OrderStatusConfirmed:
		return "confirmed"
	case models.OrderStatusPreparing:
		return "being prepared"
	case models.OrderStatusReady:
		return "ready"
	case models.OrderStatusOutForDelivery:
		return "out for delivery"
	case models.OrderStatusDelivered:
		return "delivered"
	case models.OrderStatusCompleted:
		return "completed"
	case models.OrderStatusCanceled:
		return "canceled"
	case models.OrderStatusPendingApproval:
		return "awaiting your approval for a delay"
	default:
		return string(status)
	}
}

func normalizeLocale(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	if strings.HasPrefix(l, "zh") {
		return constants.LocaleZhCN
	}
	return constants.LocaleEnUS
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
