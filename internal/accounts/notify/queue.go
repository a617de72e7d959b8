package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"

	// TaskTypeSendEmail carries a Message as its JSON payload.
	TaskTypeSendEmail = "mail:send"

	defaultMaxRetry = 5
)

func NewSendEmailTask(msg Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// QueueSender enqueues messages for a Worker to deliver. Retries are left to
// asynq.
type QueueSender struct {
	client   *asynq.Client
	maxRetry int
}

func NewQueueSender(opt asynq.RedisConnOpt) *QueueSender {
	return &QueueSender{client: asynq.NewClient(opt), maxRetry: defaultMaxRetry}
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	task, err := NewSendEmailTask(msg)
	if err != nil {
		return &DeliveryError{To: msg.To, Err: err}
	}
	if _, err := s.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(s.maxRetry)); err != nil {
		return &DeliveryError{To: msg.To, Err: fmt.Errorf("enqueue: %w", err)}
	}
	return nil
}

func (s *QueueSender) Close() error { return s.client.Close() }

// Worker drains the mail queue into a Sender.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

type WorkerConfig struct {
	RedisOpts   asynq.RedisConnOpt
	Concurrency int
	Sender      Sender
	Logger      *slog.Logger
}

func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Sender == nil {
		return nil, errors.New("notify: worker requires a sender")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{QueueDefault: 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSendEmail, HandleSendEmailTask(cfg.Sender, cfg.Logger))

	return &Worker{server: srv, mux: mux, logger: cfg.Logger}, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.server.Shutdown()
		w.logger.Info("mail worker stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

// HandleSendEmailTask returns the asynq handler for TaskTypeSendEmail.
// Undecodable payloads are dropped without retry.
func HandleSendEmailTask(sender Sender, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var msg Message
		if err := json.Unmarshal(t.Payload(), &msg); err != nil {
			logger.Error("drop malformed mail task", slog.Any("err", err))
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		if err := sender.Send(ctx, msg); err != nil {
			logger.Warn("mail delivery failed", slog.String("to", msg.To), slog.Any("err", err))
			return err
		}
		return nil
	}
}
