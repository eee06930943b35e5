package notify

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/logger"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
)

// Fanout entrega cada evento a todos los destinos en paralelo. Un destino que
// falla no impide la entrega a los demás; se devuelve el primer error.
type Fanout struct {
	sinks []namedSink
	log   *logger.Logger
}

type namedSink struct {
	name string
	pub  ports.NotificationPublisher
}

func NewFanout(log *logger.Logger) *Fanout {
	if log == nil {
		log = logger.Nop()
	}
	return &Fanout{log: log.With("component", "notify_fanout")}
}

// Add registra un destino; los nil se ignoran.
func (f *Fanout) Add(name string, pub ports.NotificationPublisher) *Fanout {
	if pub != nil {
		f.sinks = append(f.sinks, namedSink{name: name, pub: pub})
	}
	return f
}

func (f *Fanout) Len() int { return len(f.sinks) }

// Publish implementa ports.NotificationPublisher.
func (f *Fanout) Publish(ctx context.Context, event domain.NotificationEvent) error {
	var g errgroup.Group
	for _, sink := range f.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.pub.Publish(ctx, event); err != nil {
				f.log.Warn("sink rejected event", "sink", sink.name, "event_id", event.ID, "error", err)
				return fmt.Errorf("%s: %w", sink.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// LogPublisher solo registra los eventos. Es el destino por defecto cuando no
// hay transporte configurado.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogPublisher{log: log.With("component", "notify_log")}
}

// Publish implementa ports.NotificationPublisher.
func (p *LogPublisher) Publish(_ context.Context, event domain.NotificationEvent) error {
	p.log.Info("notification",
		"event_id", event.ID,
		"type", event.Type,
		"document_id", event.DocumentID,
		"position", event.Position,
		"actor_id", event.ActorID,
		"targets", event.TargetUserIDs,
	)
	return nil
}

var (
	_ ports.NotificationPublisher = (*Fanout)(nil)
	_ ports.NotificationPublisher = (*LogPublisher)(nil)
)
