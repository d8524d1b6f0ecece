// Package auditWorker consumes application lifecycle messages from the
// bus and persists them as an audit trail. It never touches application
// rows themselves, only the append-only application_events table.
package auditWorker

import (
	"context"
	"encoding/json"

	"github.com/wb-go/wbf/zlog"

	"dancereg/internal/dto"
	"dancereg/internal/model"
	"dancereg/internal/rabbit"
	"dancereg/internal/repo"
)

type Reader struct {
	RMQ    *rabbit.Client
	repo   repo.Repository
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq *rabbit.Client, repo repo.Repository) *Reader {
	return &Reader{
		RMQ:  rmq,
		repo: repo,
		done: make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("audit worker started")

	go func() {
		defer close(r.done)

		handler := func(body []byte) error {
			var msg dto.ApplicationMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				zlog.Logger.Error().
					Err(err).
					Msgf("Failed to unmarshal message: %s", string(body))
				return err
			}

			zlog.Logger.Info().
				Int64("application_id", msg.ApplicationID).
				Int64("event_id", msg.EventID).
				Str("kind", msg.Kind).
				Msg("received application lifecycle message")

			ev := &model.ApplicationEvent{
				ApplicationID: msg.ApplicationID,
				EventID:       msg.EventID,
				Kind:          msg.Kind,
				Detail:        msg.Detail,
				OccurredAt:    msg.OccurredAt,
			}
			if err := r.repo.InsertApplicationEvent(cctx, ev); err != nil {
				zlog.Logger.Error().
					Err(err).
					Int64("application_id", msg.ApplicationID).
					Msg("Failed to record audit entry")
				return err
			}

			return nil
		}

		if err := r.RMQ.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("audit worker stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
