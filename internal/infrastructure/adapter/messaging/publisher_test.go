package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/logger"
	mockcore "github.com/amirhossein-jamali/pos-checkout/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisherSendsKeyedMessage(t *testing.T) {
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, conf)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"event_type":"transaction.completed"}` {
			return errors.New("unexpected payload")
		}
		return nil
	})

	publisher := NewKafkaPublisherFromProducer(producer, logger.NewNoopLogger())
	err := publisher.Publish(context.Background(), "pos.transactions", "RCPT-1", []byte(`{"event_type":"transaction.completed"}`))
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherReturnsBrokerErrors(t *testing.T) {
	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, conf)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherFromProducer(producer, logger.NewNoopLogger())
	err := publisher.Publish(context.Background(), "pos.transactions", "RCPT-1", []byte(`{}`))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	_ = publisher.Close()
}

func TestKafkaPublisherRequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(KafkaConfig{}, logger.NewNoopLogger())
	assert.Error(t, err)
}

func TestLogPublisher(t *testing.T) {
	log := new(mockcore.MockLogger)
	log.On("Info", "Event published", mock.MatchedBy(func(fields map[string]any) bool {
		return fields["topic"] == "pos.transactions" && fields["key"] == "RCPT-9"
	})).Return().Once()

	publisher := NewLogPublisher(log)
	require.NoError(t, publisher.Publish(context.Background(), "pos.transactions", "RCPT-9", []byte(`{"a":1}`)))
	require.NoError(t, publisher.Close())
	log.AssertExpectations(t)
}
