package entity

type FailureKind string

const (
	FailureAuth          FailureKind = "auth"
	FailureConnect       FailureKind = "connect"
	FailureProtocol      FailureKind = "protocol"
	FailureTimeout       FailureKind = "timeout"
	FailureConfiguration FailureKind = "configuration"
	FailureUnexpected    FailureKind = "unexpected"
)

// DeliveryOutcome é o resultado normalizado de uma tentativa de envio.
// Use os construtores abaixo: eles garantem que delivered, skip e erro
// nunca aparecem juntos.
type DeliveryOutcome struct {
	Channel       string      `json:"channel"`
	Delivered     bool        `json:"delivered"`
	SkippedReason string      `json:"skipped_reason,omitempty"`
	Failure       FailureKind `json:"failure,omitempty"`
	Error         string      `json:"error,omitempty"`
	Raw           any         `json:"raw_response,omitempty"`
}

func Delivered(channel string, raw any) DeliveryOutcome {
	return DeliveryOutcome{Channel: channel, Delivered: true, Raw: raw}
}

func Skipped(channel, reason string) DeliveryOutcome {
	return DeliveryOutcome{Channel: channel, SkippedReason: reason}
}

func Failed(channel string, kind FailureKind, err error, raw any) DeliveryOutcome {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if kind == "" {
		kind = FailureUnexpected
	}
	return DeliveryOutcome{Channel: channel, Failure: kind, Error: msg, Raw: raw}
}

func (o DeliveryOutcome) IsSkipped() bool {
	return o.SkippedReason != ""
}

func (o DeliveryOutcome) IsFailure() bool {
	return o.Error != ""
}
