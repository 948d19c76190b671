package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"shopapi/internal/config"
)

// 認証フローで送るメールの窓口。usecaseはこれ越しに送る
type Mailer interface {
	//メールアドレス確認リンクを送る
	SendVerifyEmail(ctx context.Context, toEmail, token string) error

	//パスワード再設定リンクを送る
	SendPasswordReset(ctx context.Context, toEmail, token string) error
}

type EmailNotifier struct {
	cfg    config.Config
	logger *slog.Logger
}

// DI
func NewEmailNotifier(cfg config.Config, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, logger: logger}
}

func (n *EmailNotifier) SendVerifyEmail(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(n.cfg.FEURL, "/"), token)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>メールアドレスの確認</h2>
    <p>以下のリンクを開いて登録を完了してください。</p>
    <p><a href="%s">%s</a></p>
    <p>リンクの有効期限が切れた場合は、ログイン後に確認メールを再送できます。</p>
  </div>
</body>
</html>`, link, link)

	return n.send(toEmail, "【ShopAPI】メールアドレスの確認", body)
}

func (n *EmailNotifier) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(n.cfg.FEURL, "/"), token)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>パスワード再設定</h2>
    <p>以下のリンクから新しいパスワードを設定してください。</p>
    <p><a href="%s">%s</a></p>
    <p>心当たりがない場合はこのメールを無視してください。</p>
  </div>
</body>
</html>`, link, link)

	return n.send(toEmail, "【ShopAPI】パスワード再設定", body)
}

func (n *EmailNotifier) send(toEmail, subject, htmlBody string) error {
	if n.cfg.SMTPHost == "" || n.cfg.MailFrom == "" {
		return fmt.Errorf("mail config missing")
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.MailFrom)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(n.cfg.SMTPHost, n.cfg.SMTPPort, n.cfg.SMTPUser, n.cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("email sent", slog.String("to", toEmail), slog.String("subject", subject))
	return nil
}
