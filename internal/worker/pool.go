// Package worker persists audit entries asynchronously. Mutating services
// enqueue entries onto a Redis list and return immediately; a small pool
// of goroutines drains the list into the activity_logs table. Losing an
// entry (Redis down, process crash) never affects the operation it
// describes.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tddymnbt/CRCMS-API/internal/ids"
	"github.com/tddymnbt/CRCMS-API/internal/model"
	"github.com/tddymnbt/CRCMS-API/internal/repository"
)

const (
	queueKey       = "crcms:activity_queue"
	enqueueTimeout = 2 * time.Second
	popTimeout     = 5 * time.Second
)

// Job is one audit entry in flight.
type Job struct {
	Actor       string    `json:"actor"`
	Module      string    `json:"module"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	RefID       string    `json:"ref_id"`
	At          time.Time `json:"at"`
}

// Dispatcher implements service.ActivityRecorder by pushing jobs onto the
// Redis queue. Record never blocks the caller beyond the enqueue timeout
// and never returns an error.
type Dispatcher struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewDispatcher(rdb *redis.Client, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{rdb: rdb, log: log.With().Str("component", "activity_dispatcher").Logger()}
}

func (d *Dispatcher) Record(actor, module, action, description, refID string) {
	job := Job{
		Actor:       actor,
		Module:      module,
		Action:      action,
		Description: description,
		RefID:       refID,
		At:          time.Now().UTC(),
	}
	payload, err := json.Marshal(job)
	if err != nil {
		d.log.Error().Err(err).Msg("marshal activity job")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()
	if err := d.rdb.LPush(ctx, queueKey, payload).Err(); err != nil {
		d.log.Error().Err(err).Str("module", module).Str("action", action).
			Msg("enqueue activity job")
	}
}

// Pool drains the queue into the activity log repository.
type Pool struct {
	rdb  *redis.Client
	logs repository.ActivityLogRepository
	size int
	log  zerolog.Logger
}

func NewPool(rdb *redis.Client, logs repository.ActivityLogRepository, size int, log zerolog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		rdb:  rdb,
		logs: logs,
		size: size,
		log:  log.With().Str("component", "activity_pool").Logger(),
	}
}

// Start launches the worker goroutines. They run until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		go p.run(ctx, i)
	}
	p.log.Info().Int("workers", p.size).Msg("activity log workers started")
}

func (p *Pool) run(ctx context.Context, id int) {
	log := p.log.With().Int("worker", id).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.rdb.BRPop(ctx, popTimeout, queueKey).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.Error().Err(err).Msg("pop activity job")
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value]
		if len(res) != 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Error().Err(err).Msg("decode activity job")
			continue
		}
		if err := p.persist(ctx, job); err != nil {
			log.Error().Err(err).Str("module", job.Module).Msg("persist activity job")
		}
	}
}

func (p *Pool) persist(ctx context.Context, job Job) error {
	return p.logs.Create(ctx, &model.ActivityLog{
		ExternalID:  ids.New(ids.PrefixActivityLog),
		Actor:       job.Actor,
		Module:      job.Module,
		Action:      job.Action,
		Description: job.Description,
		RefID:       job.RefID,
		CreatedAt:   job.At,
	})
}
