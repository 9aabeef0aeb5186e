// Package changefeed 將 store 的每一個 action 發送到 kafka
package changefeed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/store"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var (
	ErrPublisherClosed = errors.New("publisher is closed")
	ErrBufferFull      = errors.New("publisher buffer is full")
)

const defaultBufferSize = 1024

type option func(*Publisher)

func WithBufferSize(n int) option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithClock(now func() time.Time) option {
	return func(p *Publisher) {
		p.now = now
	}
}

/*
Publisher 單一 worker 依序寫出，保持 action 順序
buffer 滿時直接丟棄並記錄，不阻塞 dispatch
*/
type Publisher struct {
	writer     Writer
	logger     *zerolog.Logger
	bufferSize int
	now        func() time.Time

	isRunning atomic.Bool
	mu        sync.RWMutex
	ch        chan kafka.Message
	stopped   chan struct{}
	dropped   atomic.Int64
}

func NewPublisher(w Writer, logger *zerolog.Logger, opts ...option) *Publisher {
	if w == nil {
		panic("publisher dependency writer is nil")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	p := &Publisher{
		writer:     w,
		logger:     logger,
		bufferSize: defaultBufferSize,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Start() {
	if !p.isRunning.CompareAndSwap(false, true) {
		return
	}
	p.mu.Lock()
	p.ch = make(chan kafka.Message, p.bufferSize)
	p.stopped = make(chan struct{})
	p.mu.Unlock()
	go p.run(p.ch, p.stopped)
}

func (p *Publisher) run(ch <-chan kafka.Message, stopped chan<- struct{}) {
	defer close(stopped)
	for msg := range ch {
		if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
			p.logger.Error().Err(err).
				Str("key", string(msg.Key)).
				Msg("publish action failed")
		}
	}
}

// Publish 非同步，不等待寫入結果
func (p *Publisher) Publish(userID string, action store.Action) error {
	msg, err := prepareEventMessage(userID, action, p.now().UTC())
	if err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.isRunning.Load() {
		return ErrPublisherClosed
	}
	select {
	case p.ch <- msg:
		return nil
	default:
		p.dropped.Add(1)
		p.logger.Warn().Str("action", string(action.Type())).Msg("publisher buffer full, action dropped")
		return ErrBufferFull
	}
}

// Listener 掛在 store 上使用
func (p *Publisher) Listener() store.Listener {
	return func(action store.Action, state store.State) {
		// 登出後 state 已無 user id，以空 key 送出
		if err := p.Publish(state.User.ID, action); err != nil && !errors.Is(err, ErrBufferFull) {
			p.logger.Error().Err(err).Str("action", string(action.Type())).Msg("publish action failed")
		}
	}
}

func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close 等待 buffer 內訊息送出，逾時直接關閉 writer
func (p *Publisher) Close(timeout time.Duration) error {
	if !p.isRunning.CompareAndSwap(true, false) {
		return nil
	}
	p.mu.Lock()
	close(p.ch)
	stopped := p.stopped
	p.mu.Unlock()

	select {
	case <-stopped:
	case <-time.After(timeout):
		p.logger.Warn().Dur("timeout", timeout).Msg("publisher close timeout, pending actions dropped")
	}
	return p.writer.Close()
}
