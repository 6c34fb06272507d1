package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/astroservice/internal/entity"
)

type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(birthDate, birthTime, birthPlace string) entity.EvaluationResult {
	args := m.Called(birthDate, birthTime, birthPlace)
	return args.Get(0).(entity.EvaluationResult)
}

type MockDeliveryChannel struct {
	mock.Mock
	name      string
	field     string
	mandatory bool
}

func newMockChannel(name, field string, mandatory bool) *MockDeliveryChannel {
	return &MockDeliveryChannel{name: name, field: field, mandatory: mandatory}
}

func (m *MockDeliveryChannel) Name() string             { return m.name }
func (m *MockDeliveryChannel) DestinationField() string { return m.field }
func (m *MockDeliveryChannel) Mandatory() bool          { return m.mandatory }

func (m *MockDeliveryChannel) Destination(lead entity.Lead) string {
	if m.field == "email" {
		return lead.Email
	}
	return lead.ExternalID
}

func (m *MockDeliveryChannel) Send(ctx context.Context, destination, text string) entity.DeliveryOutcome {
	args := m.Called(ctx, destination, text)
	return args.Get(0).(entity.DeliveryOutcome)
}
