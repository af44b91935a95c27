// internal/services/notification_service.go
package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tianguisbeats/tianguis-backend/internal/config"
	"github.com/tianguisbeats/tianguis-backend/internal/models"
	"github.com/tianguisbeats/tianguis-backend/internal/pricing"
)

type NotificationService struct {
	cfg *config.Config
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{cfg: cfg}
}

// SendPurchaseConfirmation emails the buyer a summary of a completed order.
// Contract links arrive separately once the PDFs are generated.
func (s *NotificationService) SendPurchaseConfirmation(order *models.Order) error {
	if order.Buyer.Email == "" {
		return fmt.Errorf("order %s has no buyer email", order.OrderKey)
	}

	// Item prices are stored in the base currency; only the charged total is
	// in the buyer's currency.
	var lines strings.Builder
	for _, item := range order.Items {
		if item.LicenseType != "" {
			fmt.Fprintf(&lines, "- %s (Licencia %s): $%.2f %s\n",
				item.Title, item.LicenseType, item.ChargedPrice, pricing.BaseCurrency)
		} else {
			fmt.Fprintf(&lines, "- %s: $%.2f %s\n", item.Title, item.ChargedPrice, pricing.BaseCurrency)
		}
	}

	body := fmt.Sprintf(
		"Hola %s,\n\n"+
			"¡Gracias por tu compra en Tianguis Beats!\n\n"+
			"Orden: %s\n\n%s\n"+
			"Total pagado: $%.2f %s\n\n"+
			"Tus contratos de licencia estarán disponibles en tu historial de compras en unos minutos.\n\n"+
			"El equipo de Tianguis Beats",
		order.Buyer.DisplayName(), order.OrderKey, lines.String(), order.ChargedAmount, order.Currency,
	)

	return s.sendEmail(order.Buyer.Email, "Confirmación de compra - Tianguis Beats", body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.cfg.Email.SMTPUsername == "" {
		logrus.WithField("to", to).Debug("SMTP not configured, skipping email")
		return nil
	}

	auth := smtp.PlainAuth("", s.cfg.Email.SMTPUsername, s.cfg.Email.SMTPPassword, s.cfg.Email.SMTPHost)
	addr := s.cfg.Email.SMTPHost + ":" + s.cfg.Email.SMTPPort

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.Email.FromName, s.cfg.Email.FromEmail, to, subject, body)

	if err := smtp.SendMail(addr, auth, s.cfg.Email.FromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
