package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/bytebufferpool"
)

const (
	defaultBetterStackTimeout    = 3 * time.Second
	defaultBetterStackQueueSize  = 1024
	defaultBetterStackBatchSize  = 50
	defaultBetterStackFlushEvery = time.Second
)

type betterStackShipperConfig struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	QueueSize  int
	BatchSize  int
	FlushEvery time.Duration
}

// betterStackShipper is a zapcore.WriteSyncer that never blocks the caller.
// Encoded records are queued, grouped into JSON arrays and posted from a
// single goroutine. Records that do not fit in the queue are dropped.
type betterStackShipper struct {
	endpoint   string
	token      string
	client     *http.Client
	batchSize  int
	flushEvery time.Duration

	mu      sync.RWMutex
	closed  bool
	records chan []byte
	done    chan struct{}

	dropped atomic.Uint64
}

func newBetterStackShipper(cfg betterStackShipperConfig) *betterStackShipper {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultBetterStackTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultBetterStackQueueSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBetterStackBatchSize
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = defaultBetterStackFlushEvery
	}

	s := &betterStackShipper{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		client:     &http.Client{Timeout: cfg.Timeout},
		batchSize:  cfg.BatchSize,
		flushEvery: cfg.FlushEvery,
		records:    make(chan []byte, cfg.QueueSize),
		done:       make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *betterStackShipper) Write(p []byte) (int, error) {
	record := bytes.TrimSpace(p)
	if len(record) == 0 {
		return len(p), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return len(p), nil
	}

	select {
	case s.records <- bytes.Clone(record):
	default:
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			fmt.Fprintf(os.Stderr, "betterstack queue full; dropped logs=%d\n", n)
		}
	}
	return len(p), nil
}

func (s *betterStackShipper) Sync() error {
	return nil
}

// Close stops accepting records and waits for the queue to drain.
func (s *betterStackShipper) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.records)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *betterStackShipper) loop() {
	defer close(s.done)

	batch := bytebufferpool.Get()
	defer bytebufferpool.Put(batch)
	pending := 0

	flush := func() {
		if pending == 0 {
			return
		}
		_ = batch.WriteByte(']')
		s.post(batch.B, pending)
		batch.Reset()
		pending = 0
	}

	ticker := time.NewTicker(s.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case record, ok := <-s.records:
			if !ok {
				flush()
				return
			}
			if pending == 0 {
				_ = batch.WriteByte('[')
			} else {
				_ = batch.WriteByte(',')
			}
			_, _ = batch.Write(record)
			pending++
			if pending >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *betterStackShipper) post(body []byte, records int) {
	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack build request: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack ship %d record(s): %v\n", records, err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		fmt.Fprintf(os.Stderr, "betterstack ship %d record(s): status=%d\n", records, resp.StatusCode)
	}
}
