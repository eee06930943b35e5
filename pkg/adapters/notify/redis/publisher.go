package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
)

// publishClient es lo que el publicador necesita de *goredis.Client.
type publishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// Publisher publica los eventos como JSON en un canal pub/sub. El servicio que
// mantiene los sockets con los usuarios se suscribe a ese canal.
type Publisher struct {
	rdb     publishClient
	closer  func() error
	channel string
}

// NewPublisher conecta a Redis y verifica la conexión.
func NewPublisher(ctx context.Context, addr, channel string) (*Publisher, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	p := newPublisher(rdb, channel)
	p.closer = rdb.Close
	return p, nil
}

func newPublisher(rdb publishClient, channel string) *Publisher {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "docuprex.notifications"
	}
	return &Publisher{rdb: rdb, channel: channel}
}

// Publish implementa ports.NotificationPublisher.
func (p *Publisher) Publish(ctx context.Context, event domain.NotificationEvent) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis publisher not initialized")
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p == nil || p.closer == nil {
		return nil
	}
	return p.closer()
}

var _ ports.NotificationPublisher = (*Publisher)(nil)
