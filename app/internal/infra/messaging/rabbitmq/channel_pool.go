package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("rabbitmq channel pool closed")

// ChannelPool hands out AMQP channels opened on a single connection.
type ChannelPool struct {
	conn      *amqp.Connection
	channels  chan *amqp.Channel
	mu        sync.Mutex
	closed    bool
	queueName string
	logger    *zap.Logger

	newChannel func() (*amqp.Channel, error)
	stale      func(*amqp.Channel) bool
}

func NewChannelPool(url, queueName string, size int, logger *zap.Logger) (*ChannelPool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	pool := &ChannelPool{
		conn:      conn,
		channels:  make(chan *amqp.Channel, size),
		queueName: queueName,
		logger:    logger,
		stale:     (*amqp.Channel).IsClosed,
	}
	pool.newChannel = pool.createChannel

	for i := 0; i < size; i++ {
		ch, err := pool.newChannel()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("create channel %d: %w", i, err)
		}
		pool.channels <- ch
	}

	logger.Info("rabbitmq channel pool ready", zap.Int("size", size), zap.String("queue", queueName))
	return pool, nil
}

// createChannel opens a channel and declares the durable queue on it.
func (p *ChannelPool) createChannel() (*amqp.Channel, error) {
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(p.queueName, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return ch, nil
}

// Get waits for a free channel until ctx is done. Closed channels are
// replaced on the way out; when the replacement fails the closed channel goes
// back so its slot is retried by the next caller.
func (p *ChannelPool) Get(ctx context.Context) (*amqp.Channel, error) {
	select {
	case ch, ok := <-p.channels:
		if !ok {
			return nil, ErrPoolClosed
		}
		if !p.stale(ch) {
			return ch, nil
		}
		fresh, err := p.newChannel()
		if err != nil {
			p.Put(ch)
			p.logger.Warn("reopen rabbitmq channel", zap.Error(err))
			return nil, fmt.Errorf("reopen channel: %w", err)
		}
		return fresh, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put returns ch to the pool, closing it when the pool is full or closed.
// A closed ch keeps its slot and is reopened by Get.
func (p *ChannelPool) Put(ch *amqp.Channel) {
	if ch == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = ch.Close()
		return
	}
	select {
	case p.channels <- ch:
	default:
		_ = ch.Close()
	}
}

func (p *ChannelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	close(p.channels)
	for ch := range p.channels {
		_ = ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.logger.Info("rabbitmq channel pool closed")
}
