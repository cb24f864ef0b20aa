package events

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/recruitstack/recruitstack/dto"
	"github.com/recruitstack/recruitstack/interfaces"
	"github.com/recruitstack/recruitstack/internal/enum"
	"github.com/recruitstack/recruitstack/internal/logger"
	"github.com/recruitstack/recruitstack/internal/tracing"
	"github.com/recruitstack/recruitstack/internal/utils"
)

const (
	ExchangeRecruitstack = "recruitstack"
	ExchangeDeadLetter   = "recruitstack-dead-letter"

	QueueRecruitstackEvents = "events-recruitstack"
	DLQRecruitstackEvents   = QueueRecruitstackEvents + "-dlq"

	RoutingKeyDeadLetter = "dead-letter"

	DefaultMessageTTL          = 240 * time.Hour
	DefaultMaxRetries          = 3
	DefaultPublishTimeout      = 5 * time.Second
	DefaultReconnectBackoff    = time.Second
	DefaultMaxReconnectBackoff = 30 * time.Second
)

type PublisherConfig struct {
	MessageTTL          time.Duration
	MaxRetries          int
	PublishTimeout      time.Duration
	ReconnectBackoff    time.Duration
	MaxReconnectBackoff time.Duration
}

func DefaultPublisherConfig() *PublisherConfig {
	return &PublisherConfig{
		MessageTTL:          DefaultMessageTTL,
		MaxRetries:          DefaultMaxRetries,
		PublishTimeout:      DefaultPublishTimeout,
		ReconnectBackoff:    DefaultReconnectBackoff,
		MaxReconnectBackoff: DefaultMaxReconnectBackoff,
	}
}

// RabbitMQPublisher publishes domain events on the recruitstack fanout exchange with publisher confirms
type RabbitMQPublisher struct {
	connection      *amqp091.Connection
	connectionMutex sync.Mutex
	publishChannel  *amqp091.Channel
	publishMutex    sync.Mutex
	confirms        chan amqp091.Confirmation
	url             string
	logger          logger.Logger
	config          PublisherConfig
	closed          chan struct{}
	closeOnce       sync.Once
}

// NewEventPublisher returns nil when no broker URL is configured
func NewEventPublisher(rabbitmqURL string, log logger.Logger) (interfaces.EventPublisher, error) {
	if rabbitmqURL == "" {
		return nil, nil
	}
	publisher, err := NewRabbitMQPublisher(rabbitmqURL, log, nil)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func NewRabbitMQPublisher(rabbitmqURL string, log logger.Logger, config *PublisherConfig) (*RabbitMQPublisher, error) {
	if config == nil {
		config = DefaultPublisherConfig()
	}

	publisher := &RabbitMQPublisher{
		url:    rabbitmqURL,
		logger: log,
		config: *config,
		closed: make(chan struct{}),
	}

	if err := publisher.connect(); err != nil {
		return nil, err
	}
	go publisher.handleReconnection()

	return publisher, nil
}

func (r *RabbitMQPublisher) PublishCandidateCreated(ctx context.Context, event dto.CandidateCreated) error {
	return r.publishEvent(ctx, event.CandidateId, enum.CANDIDATE, event)
}

func (r *RabbitMQPublisher) PublishProcessingRunCompleted(ctx context.Context, result dto.ProcessingRunResult) error {
	return r.publishEvent(ctx, result.RunId, enum.PROCESSING_RUN, dto.ProcessingRunCompleted{Result: result})
}

func (r *RabbitMQPublisher) publishEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.publishEvent")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, entityId)

	event := buildEvent(ctx, span, entityId, entityType, message)
	tracing.LogObjectAsJson(span, "event", event)

	err := r.publishMessage(ctx, event)
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

// buildEvent wraps the payload in the envelope shared by all recruitstack events
func buildEvent(ctx context.Context, span opentracing.Span, entityId string, entityType enum.EntityType, message interface{}) dto.Event {
	tracingData := tracing.ExtractTextMapCarrier(span.Context())

	messageType := reflect.TypeOf(message)
	if messageType.Kind() == reflect.Ptr {
		messageType = messageType.Elem()
	}

	return dto.Event{
		Event: dto.EventDetails{
			Id:         utils.GenerateNanoIDWithPrefix("event", 21),
			EntityId:   entityId,
			EntityType: entityType,
			EventType:  messageType.Name(),
			Data:       message,
		},
		Metadata: dto.EventMetadata{
			UberTraceId: tracingData["uber-trace-id"],
			AppSource:   utils.GetAppSourceFromContext(ctx),
			RunId:       utils.GetRunIdFromContext(ctx),
			Timestamp:   utils.Now().Format(time.RFC3339),
		},
	}
}

func (r *RabbitMQPublisher) publishMessage(ctx context.Context, message interface{}) error {
	var lastErr error
	for attempt := 0; attempt < r.config.MaxRetries; attempt++ {
		lastErr = r.publishWithConfirm(ctx, message)
		if lastErr == nil {
			return nil
		}

		r.logger.Warnf("Publish attempt %d failed: %v", attempt+1, lastErr)
		if attempt < r.config.MaxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Millisecond * 100 * time.Duration(attempt+1)):
			}
		}
	}

	return errors.Wrap(lastErr, "failed to publish message after all retries")
}

func (r *RabbitMQPublisher) publishWithConfirm(ctx context.Context, message interface{}) error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.ensureConnectionAndChannel(); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	err = r.publishChannel.PublishWithContext(
		ctx,
		ExchangeRecruitstack,
		"",
		true,  // mandatory
		false, // immediate
		amqp091.Publishing{
			DeliveryMode: amqp091.Persistent,
			ContentType:  "application/json",
			Body:         jsonBody,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return errors.Wrap(err, "failed to publish message")
	}

	select {
	case confirm := <-r.confirms:
		if !confirm.Ack {
			return errors.New("message was not confirmed by server")
		}
	case <-time.After(r.config.PublishTimeout):
		return errors.New("publish confirmation timeout")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (r *RabbitMQPublisher) connect() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	connection, err := amqp091.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "failed to connect to RabbitMQ")
	}
	r.connection = connection

	if err := r.setupTopology(); err != nil {
		return errors.Wrap(err, "failed to setup exchanges and queues")
	}

	if err := r.setupPublishChannel(); err != nil {
		return errors.Wrap(err, "failed to setup publish channel")
	}

	return nil
}

func (r *RabbitMQPublisher) setupPublishChannel() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to open publish channel")
	}

	if err := channel.Confirm(false); err != nil {
		_ = channel.Close()
		return errors.Wrap(err, "failed to enable publisher confirms")
	}

	r.confirms = channel.NotifyPublish(make(chan amqp091.Confirmation, 1))
	r.publishChannel = channel
	return nil
}

func (r *RabbitMQPublisher) setupTopology() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to open channel for exchange/queue setup")
	}
	defer channel.Close()

	if err := channel.ExchangeDeclare(ExchangeDeadLetter, "direct", true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "failed to declare dead letter exchange")
	}
	if err := channel.ExchangeDeclare(ExchangeRecruitstack, "fanout", true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "failed to declare recruitstack exchange")
	}

	if _, err := channel.QueueDeclare(DLQRecruitstackEvents, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "failed to declare DLQ %s", DLQRecruitstackEvents)
	}
	if err := channel.QueueBind(DLQRecruitstackEvents, RoutingKeyDeadLetter, ExchangeDeadLetter, false, nil); err != nil {
		return errors.Wrapf(err, "failed to bind DLQ %s", DLQRecruitstackEvents)
	}

	args := amqp091.Table{
		"x-dead-letter-exchange":    ExchangeDeadLetter,
		"x-dead-letter-routing-key": RoutingKeyDeadLetter,
		"x-message-ttl":             r.config.MessageTTL.Milliseconds(),
	}
	if _, err := channel.QueueDeclare(QueueRecruitstackEvents, true, false, false, false, args); err != nil {
		return errors.Wrapf(err, "failed to declare queue %s", QueueRecruitstackEvents)
	}
	if err := channel.QueueBind(QueueRecruitstackEvents, "", ExchangeRecruitstack, false, nil); err != nil {
		return errors.Wrapf(err, "failed to bind queue %s to exchange %s", QueueRecruitstackEvents, ExchangeRecruitstack)
	}

	return nil
}

func (r *RabbitMQPublisher) handleReconnection() {
	backoff := r.config.ReconnectBackoff

	for {
		r.connectionMutex.Lock()
		notifyClose := r.connection.NotifyClose(make(chan *amqp091.Error, 1))
		r.connectionMutex.Unlock()

		select {
		case <-r.closed:
			return
		case err := <-notifyClose:
			r.logger.Warnf("RabbitMQ connection closed: %v, attempting to reconnect", err)
		}

		for {
			select {
			case <-r.closed:
				return
			default:
			}

			err := r.connect()
			if err == nil {
				r.logger.Info("Successfully reconnected to RabbitMQ")
				break
			}

			r.logger.Errorf("Failed to reconnect: %v, retrying in %v", err, backoff)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > r.config.MaxReconnectBackoff {
				backoff = r.config.MaxReconnectBackoff
			}
		}

		backoff = r.config.ReconnectBackoff
	}
}

func (r *RabbitMQPublisher) ensureConnectionAndChannel() error {
	if r.connection == nil || r.connection.IsClosed() {
		if err := r.connect(); err != nil {
			return errors.Wrap(err, "failed to establish connection")
		}
	}

	if r.publishChannel == nil || r.publishChannel.IsClosed() {
		if err := r.setupPublishChannel(); err != nil {
			return errors.Wrap(err, "failed to establish channel")
		}
	}

	return nil
}

func (r *RabbitMQPublisher) Close() error {
	r.closeOnce.Do(func() {
		close(r.closed)
	})

	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	var err error
	if r.publishChannel != nil && !r.publishChannel.IsClosed() {
		if err = r.publishChannel.Close(); err != nil {
			r.logger.Errorf("Error closing publish channel: %v", err)
		}
	}

	if r.connection != nil && !r.connection.IsClosed() {
		if closeErr := r.connection.Close(); closeErr != nil {
			r.logger.Errorf("Error closing connection: %v", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}

	return err
}
