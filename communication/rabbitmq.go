package communication

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

const publisherStr = "snapshot-publisher"

// amqpChannel is the part of *amqp.Channel used by the publisher
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQ publishes messages in a single exchange
type RabbitMQ struct {
	config     PublisherConfig
	connection *amqp.Connection
	channel    amqpChannel
}

// NewRabbitMQ constructor for RabbitMQ. This function returns a RabbitMQ with the connection already
// established and the exchange declared
func NewRabbitMQ(config PublisherConfig) (*RabbitMQ, error) {
	connection, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}

	channel, err := connection.Channel()
	if err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("error opening RabbitMQ channel: %w", err)
	}

	rabbitMQ := &RabbitMQ{
		config:     config,
		connection: connection,
		channel:    channel,
	}

	if err = rabbitMQ.DeclareExchange(); err != nil {
		_ = rabbitMQ.KillBadBunny()
		return nil, err
	}

	log.Infof("[component: %s][exchange: %s][status: OK] connected to RabbitMQ", publisherStr, config.Exchange.Name)
	return rabbitMQ, nil
}

func newRabbitMQWithChannel(config PublisherConfig, channel amqpChannel) *RabbitMQ {
	return &RabbitMQ{
		config:  config,
		channel: channel,
	}
}

// DeclareExchange declares the output exchange
func (r *RabbitMQ) DeclareExchange() error {
	exchange := r.config.Exchange
	err := r.channel.ExchangeDeclare(
		exchange.Name,
		exchange.Type,
		exchange.Durable,
		exchange.AutoDeleted,
		exchange.Internal,
		exchange.NoWait,
		nil,
	)

	if err != nil {
		return fmt.Errorf("error declaring exchange %s: %w", exchange.Name, err)
	}
	return nil
}

// Publish publishes a message in the output exchange with the given routing key
func (r *RabbitMQ) Publish(ctx context.Context, routingKey string, message []byte, contentType string) error {
	deliveryMode := amqp.Transient
	if r.config.Persistent {
		deliveryMode = amqp.Persistent
	}

	err := r.channel.PublishWithContext(ctx,
		r.config.Exchange.Name,
		routingKey,
		r.config.Mandatory,
		false,
		amqp.Publishing{
			DeliveryMode: deliveryMode,
			ContentType:  contentType,
			Body:         message,
		},
	)
	if err != nil {
		return fmt.Errorf("error publishing in exchange %s with routing key %s: %w", r.config.Exchange.Name, routingKey, err)
	}

	log.Debugf("[component: %s][exchange: %s][routingKey: %s][status: OK] message published", publisherStr, r.config.Exchange.Name, routingKey)
	return nil
}

// KillBadBunny close RabbitMQ's connection and channel
func (r *RabbitMQ) KillBadBunny() error {
	err := r.channel.Close()
	if err != nil {
		return fmt.Errorf("error closing RabbitMQ channel: %w", err)
	}

	if r.connection == nil {
		return nil
	}

	err = r.connection.Close()
	if err != nil {
		return fmt.Errorf("error closing RabbitMQ connection: %w", err)
	}

	return nil
}
