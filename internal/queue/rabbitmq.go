package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KOFI-GYIMAH/github-activity/pkg/errors"
	"github.com/KOFI-GYIMAH/github-activity/pkg/logger"
	"github.com/streadway/amqp"
)

const refreshQueue = "github_activity_refresh"

type RefreshRequest struct {
	Username    string    `json:"username"`
	RequestedAt time.Time `json:"requested_at"`
}

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.New(
			errors.RefQueue,
			"Failed to connect to RabbitMQ",
			"Could not dial the message broker",
			err,
			errors.LevelError,
		)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.New(
			errors.RefQueue,
			"Failed to open RabbitMQ channel",
			"Could not open a channel on the broker connection",
			err,
			errors.LevelError,
		)
	}

	logger.Info("connected to RabbitMQ successfully 🎉")
	return &RabbitMQ{
		conn:    conn,
		channel: channel,
	}, nil
}

func (r *RabbitMQ) declare() (amqp.Queue, error) {
	return r.channel.QueueDeclare(
		refreshQueue,
		true,
		false,
		false,
		false,
		nil,
	)
}

func encodeRefreshRequest(req RefreshRequest) ([]byte, error) {
	return json.Marshal(req)
}

func decodeRefreshRequest(body []byte) (RefreshRequest, error) {
	var req RefreshRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, err
	}
	if req.Username == "" {
		return req, fmt.Errorf("refresh request without username")
	}
	return req, nil
}

func (r *RabbitMQ) PublishRefreshRequest(ctx context.Context, username string) error {
	queue, err := r.declare()
	if err != nil {
		return errors.New(errors.RefQueue, "Failed to declare refresh queue", "", err, errors.LevelWarning)
	}

	body, err := encodeRefreshRequest(RefreshRequest{
		Username:    username,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := r.channel.Publish(
		"",
		queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		return errors.New(errors.RefQueue, "Failed to publish refresh request", "", err, errors.LevelWarning)
	}
	return nil
}

// ConsumeRefreshRequests delivers refresh requests to handler until ctx is
// cancelled or the broker closes the channel.
func (r *RabbitMQ) ConsumeRefreshRequests(ctx context.Context, handler func(ctx context.Context, req RefreshRequest) error) error {
	queue, err := r.declare()
	if err != nil {
		return errors.New(errors.RefQueue, "Failed to declare refresh queue", "", err, errors.LevelError)
	}

	msgs, err := r.channel.Consume(
		queue.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.New(errors.RefQueue, "Failed to consume refresh queue", "", err, errors.LevelError)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					logger.Warn("refresh queue closed by broker")
					return
				}

				req, err := decodeRefreshRequest(d.Body)
				if err != nil {
					logger.Error("Error decoding refresh request: %v", err)
					continue
				}

				if err := handler(ctx, req); err != nil {
					logger.Error("Error handling refresh request for %s: %v", req.Username, err)
				}
			}
		}
	}()

	return nil
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}
