package sns

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*sns.PublishOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPublish_SendsJSONToTopic(t *testing.T) {
	client := &mockSNS{}
	var got *sns.PublishInput
	client.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(*sns.PublishInput) }).
		Return(&sns.PublishOutput{}, nil)

	p := &Publisher{client: client, topicARN: "arn:aws:sns:us-east-1:000000000000:verification"}
	ev := domain.VerificationEvent{
		ID:         "01HZX",
		Type:       domain.EventCodeConfirmed,
		Email:      "a@x.com",
		OccurredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), ev))

	require.NotNil(t, got)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:verification", *got.TopicArn)
	assert.Equal(t, domain.EventCodeConfirmed, *got.MessageAttributes["type"].StringValue)

	var decoded domain.VerificationEvent
	require.NoError(t, json.Unmarshal([]byte(*got.Message), &decoded))
	assert.Equal(t, ev, decoded)
}

func TestPublish_WrapsError(t *testing.T) {
	client := &mockSNS{}
	client.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	p := &Publisher{client: client, topicARN: "arn"}
	err := p.Publish(context.Background(), domain.VerificationEvent{Type: domain.EventCodeRequested})
	assert.ErrorContains(t, err, "sns publish: throttled")
}
