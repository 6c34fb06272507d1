package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xavierca1/astroservice/internal/entity"
	"github.com/xavierca1/astroservice/internal/logger"
)

const (
	StatusOK = "ok"

	// ChannelNone is reported when the service runs in preview-only mode.
	ChannelNone = "none"

	manyChatChannel = "manychat"
	smtpChannel     = "smtp"
)

type HandleIntakeUseCase struct {
	Secret    string
	Evaluator Evaluator
	// Channels in priority order; the first one with a destination on the
	// lead is used.
	Channels []DeliveryChannel
	Logger   zerolog.Logger

	newID func() string
}

func NewHandleIntakeUseCase(
	secret string,
	evaluator Evaluator,
	channels []DeliveryChannel,
	log zerolog.Logger,
) *HandleIntakeUseCase {
	return &HandleIntakeUseCase{
		Secret:    secret,
		Evaluator: evaluator,
		Channels:  channels,
		Logger:    logger.OrNop(log),
		newID:     uuid.NewString,
	}
}

// Execute runs one intake: authenticate, validate, evaluate, render and
// send exactly once. Delivery failures come back inside the output unless
// the outcome is a configuration problem or the channel is mandatory.
func (uc *HandleIntakeUseCase) Execute(ctx context.Context, lead entity.Lead, credential string) (*IntakeOutput, error) {
	if err := uc.Authorize(credential); err != nil {
		return nil, err
	}

	if errs := ValidateLead(lead); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	channel, destination, err := uc.selectChannel(lead)
	if err != nil {
		return nil, err
	}

	requestID := uc.newID()
	log := uc.Logger.With().Str("request_id", requestID).Logger()

	result := uc.Evaluator.Evaluate(lead.BirthDate, lead.BirthTime, lead.BirthPlace)
	preview := RenderPreview(lead.DisplayName(), result)
	top := result.Top(PreviewLimit)

	output := &IntakeOutput{
		Status:     StatusOK,
		RequestID:  requestID,
		Preview:    preview,
		LoveTop3:   top.Love,
		CareerTop3: top.Career,
		HealthTop3: top.Health,
		Channel:    ChannelNone,
	}

	if channel == nil {
		output.SkippedReason = "no delivery channel configured"
		log.Info().Msg("📝 Preview-only: nenhum canal configurado")
		return output, nil
	}

	outcome := channel.Send(ctx, destination, preview)
	output.Channel = channel.Name()
	output.Sent = outcome.Delivered
	output.SkippedReason = outcome.SkippedReason
	attachOutcome(output, outcome)

	event := log.Info()
	if outcome.IsFailure() {
		event = log.Warn()
	}
	event.
		Str("channel", channel.Name()).
		Bool("sent", outcome.Delivered).
		Str("skipped_reason", outcome.SkippedReason).
		Str("failure", string(outcome.Failure)).
		Str("error", outcome.Error).
		Msg("📨 Entrega processada")

	if outcome.Failure == entity.FailureConfiguration {
		return output, NewConfigurationError(fmt.Sprintf("%s: %s", channel.Name(), outcome.Error))
	}
	if outcome.IsFailure() && channel.Mandatory() {
		return output, NewDeliveryError(fmt.Sprintf("%s: %s", channel.Name(), outcome.Error))
	}

	return output, nil
}

// Authorize checks the shared secret on its own so the HTTP layer can reject
// a caller before reading the body.
func (uc *HandleIntakeUseCase) Authorize(credential string) error {
	if uc.Secret == "" || credential == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(credential), []byte(uc.Secret)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// selectChannel returns a nil channel in preview-only mode.
func (uc *HandleIntakeUseCase) selectChannel(lead entity.Lead) (DeliveryChannel, string, error) {
	if len(uc.Channels) == 0 {
		return nil, "", nil
	}
	for _, ch := range uc.Channels {
		if dest := ch.Destination(lead); dest != "" {
			return ch, dest, nil
		}
	}

	errs := make(ValidationErrors, 0, len(uc.Channels))
	for _, ch := range uc.Channels {
		errs = append(errs, ValidationError{ch.DestinationField(), fmt.Sprintf("is required for %s delivery", ch.Name())})
	}
	return nil, "", errs
}

func attachOutcome(out *IntakeOutput, outcome entity.DeliveryOutcome) {
	o := outcome
	switch outcome.Channel {
	case manyChatChannel:
		out.ManyChat = &o
	case smtpChannel:
		out.SMTP = &o
	}
}
