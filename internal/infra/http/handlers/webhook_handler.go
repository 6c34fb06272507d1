package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/xavierca1/astroservice/internal/entity"
	"github.com/xavierca1/astroservice/internal/infra/http/middleware"
	"github.com/xavierca1/astroservice/internal/logger"
	"github.com/xavierca1/astroservice/internal/usecase"
)

// AuthHeader carries the shared secret configured in the ManyChat request.
const AuthHeader = "X-Auth-Token"

const maxBodyBytes = 64 << 10

type IntakeExecutor interface {
	Authorize(credential string) error
	Execute(ctx context.Context, lead entity.Lead, credential string) (*usecase.IntakeOutput, error)
}

type WebhookHandler struct {
	UseCase IntakeExecutor
	log     zerolog.Logger
}

func NewWebhookHandler(uc IntakeExecutor, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		UseCase: uc,
		log:     logger.OrNop(log),
	}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	credential := r.Header.Get(AuthHeader)
	if err := h.UseCase.Authorize(credential); err != nil {
		h.writeError(w, r, err, nil)
		return
	}

	var input usecase.IntakeInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		middleware.RecordIntake("invalid_json")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "INVALID_JSON", Message: "request body must be a JSON object"})
		return
	}

	output, err := h.UseCase.Execute(r.Context(), input.ToLead(), credential)
	if output != nil && output.Channel != usecase.ChannelNone {
		middleware.RecordDelivery(output.Channel, deliveryResult(output))
	}

	if err != nil {
		h.writeError(w, r, err, output)
		return
	}

	middleware.RecordIntake("ok")
	writeJSON(w, http.StatusOK, output)
}

func (h *WebhookHandler) writeError(w http.ResponseWriter, r *http.Request, err error, output *usecase.IntakeOutput) {
	var (
		domainErr    *usecase.DomainError
		validation   usecase.ValidationErrors
		technicalErr *usecase.TechnicalError
	)

	switch {
	case errors.As(err, &domainErr) && domainErr.Code == usecase.CodeUnauthorized:
		middleware.RecordIntake("unauthorized")
		h.log.Warn().Str("remote", r.RemoteAddr).Msg("🔒 Webhook: credencial inválida")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: usecase.CodeUnauthorized, Message: "Unauthorized"})

	case errors.As(err, &validation):
		middleware.RecordIntake("invalid")
		fields := make([]FieldError, 0, len(validation))
		for _, v := range validation {
			fields = append(fields, FieldError{Field: v.Field, Message: v.Message})
		}
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   usecase.CodeValidation,
			Message: validation.Error(),
			Fields:  fields,
		})

	case errors.As(err, &technicalErr):
		status := http.StatusBadGateway
		if technicalErr.Code == usecase.CodeConfiguration {
			status = http.StatusInternalServerError
		}
		middleware.RecordIntake(technicalErr.Code)
		h.log.Error().Str("code", technicalErr.Code).Msg("❌ Webhook: " + technicalErr.Message)
		writeJSON(w, status, ErrorResponse{
			Error:   technicalErr.Code,
			Message: technicalErr.Message,
			Details: outcomeOf(output),
		})

	default:
		middleware.RecordIntake("error")
		h.log.Error().Err(err).Msg("❌ Webhook: erro inesperado")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "INTERNAL_ERROR", Message: "internal error"})
	}
}

func deliveryResult(out *usecase.IntakeOutput) string {
	switch {
	case out.Sent:
		return "sent"
	case out.SkippedReason != "":
		return "skipped"
	}
	return "failed"
}

func outcomeOf(out *usecase.IntakeOutput) *entity.DeliveryOutcome {
	if out == nil {
		return nil
	}
	if out.SMTP != nil {
		return out.SMTP
	}
	return out.ManyChat
}
