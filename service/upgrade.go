package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"baluarte/apperr"
	"baluarte/database"
	"baluarte/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UpgradeNotifier tells a user about the plan change
type UpgradeNotifier interface {
	SendProUpgradeEmail(toEmail, username string) error
}

// UpgradeResult outcome of processing a payment notification
type UpgradeResult struct {
	PaymentID  string `json:"paymentId"`
	Status     string `json:"status"`
	UserID     uint   `json:"userId,omitempty"`
	Upgraded   bool   `json:"upgraded"`
	AlreadyPro bool   `json:"alreadyPro,omitempty"`
}

// PlanCharge what an approved payment must carry to count as the PRO plan.
// A zero Amount or empty Currency skips that check.
type PlanCharge struct {
	Amount   float64
	Currency string
}

func (p PlanCharge) matches(payment *Payment) bool {
	if p.Amount > 0 {
		want := decimal.NewFromFloat(p.Amount).Round(2)
		got := decimal.NewFromFloat(payment.TransactionAmount).Round(2)
		if !got.Equal(want) {
			return false
		}
	}
	if p.Currency != "" && !strings.EqualFold(strings.TrimSpace(payment.CurrencyID), p.Currency) {
		return false
	}
	return true
}

// UpgradeService verifies payments with the gateway and promotes users to PRO
type UpgradeService struct {
	gateway  PaymentGateway
	notifier UpgradeNotifier
	plan     PlanCharge
	logger   zerolog.Logger
}

// NewUpgradeService creates the service; notifier may be nil
func NewUpgradeService(gateway PaymentGateway, notifier UpgradeNotifier, plan PlanCharge, logger zerolog.Logger) *UpgradeService {
	return &UpgradeService{gateway: gateway, notifier: notifier, plan: plan, logger: logger}
}

// ProcessPayment fetches the payment and, when approved, upgrades the user named
// by its external reference. Re-processing a payment for a PRO user changes nothing.
func (s *UpgradeService) ProcessPayment(ctx context.Context, paymentID string) (*UpgradeResult, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, apperr.Validation("ID de pago no encontrado.")
	}

	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, apperr.Wrap(apperr.KindNotFound, "Pago no encontrado.", err)
		}
		return nil, apperr.Upstream(http.StatusInternalServerError, "Error al verificar el pago con Mercado Pago.", err)
	}

	result := &UpgradeResult{PaymentID: paymentID, Status: payment.Status}
	log := s.logger.With().Str("payment_id", paymentID).Str("status", payment.Status).Logger()

	if !payment.Approved() {
		log.Info().Msg("payment not approved, nothing to do")
		return result, nil
	}

	if !s.plan.matches(payment) {
		log.Warn().
			Float64("amount", payment.TransactionAmount).
			Str("currency", payment.CurrencyID).
			Float64("plan_amount", s.plan.Amount).
			Str("plan_currency", s.plan.Currency).
			Msg("approved payment does not match the PRO plan")
		return nil, apperr.Validation("El monto o la moneda del pago no coinciden con el Plan PRO.")
	}

	userID, err := strconv.ParseUint(strings.TrimSpace(payment.ExternalReference), 10, 64)
	if err != nil || userID == 0 {
		return nil, apperr.Wrap(apperr.KindValidation, "Referencia externa inválida en el pago.", err)
	}
	result.UserID = uint(userID)

	var user models.User
	if err := database.DB.WithContext(ctx).First(&user, uint(userID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Uint64("user_id", userID).Msg("webhook user not found")
			return nil, apperr.NotFound("Usuario no encontrado.")
		}
		return nil, apperr.Internal("error al buscar el usuario", err)
	}

	if user.IsPro() {
		result.AlreadyPro = true
		return result, nil
	}

	if err := database.DB.WithContext(ctx).Model(&user).Update("role", models.RolePro).Error; err != nil {
		return nil, apperr.Internal("error al actualizar el plan", err)
	}
	result.Upgraded = true
	log.Info().Uint("user_id", user.ID).Msg("user upgraded to PRO")

	s.notify(&user)

	return result, nil
}

func (s *UpgradeService) notify(user *models.User) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendProUpgradeEmail(user.Email, user.Username); err != nil {
		if errors.Is(err, ErrEmailDisabled) {
			s.logger.Debug().Uint("user_id", user.ID).Msg("email disabled, upgrade email skipped")
			return
		}
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("upgrade email failed")
	}
}
