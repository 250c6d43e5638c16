package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"foodmart/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSQS is a mock implementation of awsclient.SQSAPI.
type MockSQS struct {
	mock.Mock
}

func (m *MockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.SendMessageOutput), args.Error(1)
}

func TestSQSPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	client := new(MockSQS)
	pub := NewSQSPublisher(client, "https://sqs.local/000000000000/orders", zerolog.Nop())

	order := &model.Order{
		ID:               uuid.New(),
		CustomerID:       uuid.New(),
		RestaurantID:     uuid.New(),
		FulfillmentState: model.StateAccepted,
		PaymentState:     model.PaymentPending,
	}
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	var sent *sqs.SendMessageInput
	client.On("SendMessage", ctx, mock.AnythingOfType("*sqs.SendMessageInput")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*sqs.SendMessageInput) }).
		Return(&sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil)

	err := pub.Publish(ctx, NewOrderEvent(OrderStatusChanged, order, at))
	require.NoError(t, err)
	require.NotNil(t, sent)

	assert.Equal(t, "https://sqs.local/000000000000/orders", aws.ToString(sent.QueueUrl))
	assert.Equal(t, OrderStatusChanged, aws.ToString(sent.MessageAttributes["event_type"].StringValue))
	assert.Equal(t, order.ID.String(), aws.ToString(sent.MessageAttributes["order_id"].StringValue))

	var body OrderEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(sent.MessageBody)), &body))
	assert.Equal(t, order.ID, body.OrderID)
	assert.Equal(t, model.StateAccepted, body.FulfillmentState)
	assert.True(t, at.Equal(body.At))
}

func TestSQSPublisher_PublishError(t *testing.T) {
	ctx := context.Background()
	client := new(MockSQS)
	client.On("SendMessage", ctx, mock.Anything).Return(nil, errors.New("throttled"))

	pub := NewSQSPublisher(client, "q", zerolog.Nop())
	err := pub.Publish(ctx, OrderEvent{Type: OrderCreated, OrderID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), OrderEvent{}))
}
