package services

import (
	"context"
	"sync"
	"time"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/logger"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
)

// Dispatcher entrega los eventos de notificación en segundo plano. Un fallo de
// entrega se registra y no afecta la operación que lo originó. Los eventos de
// una misma clave (el documento) se entregan en el orden en que se despacharon;
// claves distintas avanzan en paralelo.
type Dispatcher struct {
	publisher ports.NotificationPublisher
	observer  ports.OperationObserver
	log       *logger.Logger
	timeout   time.Duration
	wg        sync.WaitGroup

	mu     sync.Mutex
	queues map[string][]func(ctx context.Context) []domain.NotificationEvent
}

func NewDispatcher(publisher ports.NotificationPublisher, observer ports.OperationObserver, log *logger.Logger, timeout time.Duration) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		publisher: publisher,
		observer:  observer,
		log:       log.With("component", "dispatcher"),
		timeout:   timeout,
		queues:    make(map[string][]func(ctx context.Context) []domain.NotificationEvent),
	}
}

// Dispatch encola build en la cola de key. Si la cola estaba vacía arranca
// una goroutine que la vacía en orden.
func (d *Dispatcher) Dispatch(key string, build func(ctx context.Context) []domain.NotificationEvent) {
	if d == nil || d.publisher == nil {
		return
	}
	d.wg.Add(1)
	d.mu.Lock()
	queue, draining := d.queues[key]
	d.queues[key] = append(queue, build)
	d.mu.Unlock()
	if !draining {
		go d.drain(key)
	}
}

// drain entrega la cabeza de la cola de key mientras haya trabajo. La cabeza
// sigue en la cola durante la entrega, así Dispatch sabe que hay una goroutine
// activa.
func (d *Dispatcher) drain(key string) {
	for {
		d.mu.Lock()
		build := d.queues[key][0]
		d.mu.Unlock()

		d.deliver(build)

		d.mu.Lock()
		rest := d.queues[key][1:]
		if len(rest) == 0 {
			delete(d.queues, key)
		} else {
			d.queues[key] = rest
		}
		d.mu.Unlock()
		d.wg.Done()
		if len(rest) == 0 {
			return
		}
	}
}

func (d *Dispatcher) deliver(build func(ctx context.Context) []domain.NotificationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, ev := range build(ctx) {
		err := d.publisher.Publish(ctx, ev)
		if d.observer != nil {
			d.observer.ObserveEvent(ev.Type, err)
		}
		if err != nil {
			d.log.Warn("event delivery failed",
				"event_id", ev.ID,
				"type", ev.Type,
				"document_id", ev.DocumentID,
				"error", err,
			)
			continue
		}
		d.log.Debug("event delivered", "event_id", ev.ID, "type", ev.Type, "targets", len(ev.TargetUserIDs))
	}
}

// Wait espera a que terminen las entregas en curso.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
