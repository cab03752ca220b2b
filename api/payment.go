package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"baluarte/apperr"
	"baluarte/config"
	"baluarte/middleware"
	"baluarte/queue"
	"baluarte/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	planItemID    = "PLAN-PRO-BALUARTE"
	planItemTitle = "Suscripción Plan PRO Baluarte - Mensual"
	topicPayment  = "payment"
)

// NotificationPublisher hands webhook notifications to the background consumer
type NotificationPublisher interface {
	PublishPaymentNotification(ctx context.Context, msg *queue.PaymentNotificationMessage) error
}

// PaymentHandler MercadoPago checkout and webhook
type PaymentHandler struct {
	cfg       config.MercadoPagoConfig
	gateway   service.PaymentGateway
	upgrades  *service.UpgradeService
	publisher NotificationPublisher
	logger    zerolog.Logger
}

// NewPaymentHandler creates the handler; publisher nil processes webhooks inline
func NewPaymentHandler(cfg config.MercadoPagoConfig, gateway service.PaymentGateway, upgrades *service.UpgradeService, publisher NotificationPublisher, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		cfg:       cfg,
		gateway:   gateway,
		upgrades:  upgrades,
		publisher: publisher,
		logger:    logger,
	}
}

// PreferenceResponse checkout redirect data
type PreferenceResponse struct {
	PreferenceID string `json:"preferenceId"`
	InitPoint    string `json:"init_point"`
}

// WebhookResponse acknowledgement sent back to MercadoPago
type WebhookResponse struct {
	Message string                 `json:"message"`
	Result  *service.UpgradeResult `json:"result,omitempty"`
}

type webhookBody struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID interface{} `json:"id"`
	} `json:"data"`
}

// CreatePreference starts the PRO checkout for the current user
// @Summary Crear preferencia de pago
// @Description Crea la preferencia de Mercado Pago para el Plan PRO
// @Tags Mercado Pago
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PreferenceResponse
// @Failure 400 {object} Response "Ya es PRO"
// @Failure 403 {object} Response "Credenciales de Mercado Pago inválidas"
// @Failure 500 {object} Response "Error del servidor o de Mercado Pago"
// @Router /api/mercadopago/create-preference [post]
func (h *PaymentHandler) CreatePreference(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		Fail(c, err)
		return
	}

	if user.IsPro() {
		Fail(c, apperr.Validation("El usuario ya tiene el Plan PRO activo."))
		return
	}

	if h.cfg.PlanPrice <= 0 {
		h.logger.Error().Float64("plan_price", h.cfg.PlanPrice).Msg("invalid plan price in configuration")
		Fail(c, apperr.Internal("El precio del plan no está configurado correctamente en el servidor.", nil))
		return
	}

	pref := service.PreferenceRequest{
		Items: []service.PreferenceItem{{
			ID:         planItemID,
			Title:      planItemTitle,
			Quantity:   1,
			UnitPrice:  h.cfg.PlanPrice,
			CurrencyID: h.cfg.Currency,
		}},
		BackURLs: service.BackURLs{
			Success: h.cfg.SuccessURL,
			Failure: h.cfg.FailureURL,
			Pending: h.cfg.PendingURL,
		},
		ExternalReference: strconv.FormatUint(uint64(user.ID), 10),
		NotificationURL:   h.cfg.NotificationURL,
	}

	result, err := h.gateway.CreatePreference(c.Request.Context(), pref)
	if err != nil {
		var apiErr *service.APIError
		if errors.As(err, &apiErr) && apiErr.Unauthorized() {
			Fail(c, apperr.Upstream(http.StatusForbidden,
				"Autorización fallida con Mercado Pago. Revisá el access token (MP_ACCESS_TOKEN) del servidor.", err))
			return
		}
		Fail(c, apperr.Upstream(http.StatusInternalServerError,
			"Error interno del servidor al procesar el pago.", err))
		return
	}

	Success(c, PreferenceResponse{
		PreferenceID: result.ID,
		InitPoint:    result.InitPoint,
	})
}

// notificationParams reads topic and payment id from the query string, then from the JSON body
func notificationParams(c *gin.Context) (topic, paymentID string) {
	topic = c.Query("topic")
	if topic == "" {
		topic = c.Query("type")
	}
	paymentID = c.Query("id")
	if paymentID == "" {
		paymentID = c.Query("data.id")
	}
	if topic != "" && paymentID != "" {
		return topic, paymentID
	}

	if c.Request.Body == nil {
		return topic, paymentID
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	var body webhookBody
	if err := dec.Decode(&body); err != nil {
		return topic, paymentID
	}
	if topic == "" {
		topic = body.Type
	}
	if paymentID == "" && body.Data.ID != nil {
		paymentID = fmt.Sprint(body.Data.ID)
	}
	return topic, paymentID
}

// Webhook receives MercadoPago notifications. The payment is always verified
// with the gateway before any upgrade.
// @Summary Webhook de Mercado Pago
// @Description Notificación pública de Mercado Pago; solo procesa pagos
// @Tags Mercado Pago
// @Accept json
// @Produce json
// @Param topic query string false "payment o merchant_order"
// @Param id query string false "ID del pago"
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} Response "ID de pago faltante"
// @Failure 404 {object} Response "Usuario no encontrado"
// @Router /api/mercadopago/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	topic, paymentID := notificationParams(c)
	if c.Request.Body != nil {
		io.Copy(io.Discard, c.Request.Body)
	}

	if topic != topicPayment {
		Success(c, WebhookResponse{Message: "Notificación no es de pago, ignorada."})
		return
	}

	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		Fail(c, apperr.Validation("ID de pago no encontrado."))
		return
	}

	if h.publisher != nil {
		msg := queue.NewPaymentNotificationMessage(paymentID, topic, middleware.GetRequestID(c))
		err := h.publisher.PublishPaymentNotification(c.Request.Context(), msg)
		if err == nil {
			Success(c, WebhookResponse{Message: "Notificación encolada."})
			return
		}
		h.logger.Warn().Err(err).Str("payment_id", paymentID).Msg("publish failed, processing inline")
	}

	result, err := h.upgrades.ProcessPayment(c.Request.Context(), paymentID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, WebhookResponse{Message: "Notificación procesada.", Result: result})
}

// HandleNotification consumer side of the queue
func (h *PaymentHandler) HandleNotification(ctx context.Context, msg *queue.PaymentNotificationMessage) error {
	_, err := h.upgrades.ProcessPayment(ctx, msg.PaymentID)
	return err
}
