package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Publisher ships a digest batch to a topic.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type DigestConfig struct {
	TimeInterval   time.Duration // flush interval
	CountThreshold int           // distinct entries before an early flush
	Topic          string
	Publisher      Publisher
	// OnPublishError is called when a flush fails. Optional.
	OnPublishError func(err error)
}

// DigestEntry is one distinct warn/error event with its repeat count.
type DigestEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Digest deduplicates warn/error events and publishes them in batches.
// A batch run that records many ERROR rows for the same cause ships one entry with a count.
type Digest struct {
	config  *DigestConfig
	entries map[string]*DigestEntry
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	now     func() time.Time
}

func NewDigest(config *DigestConfig) *Digest {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Digest{
		config:  config,
		entries: make(map[string]*DigestEntry),
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}
	if config.TimeInterval > 0 {
		d.wg.Add(1)
		go d.periodicFlush()
	}
	return d
}

func (d *Digest) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := d.now()
	key := digestKey(level, message, fields, caller)

	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		d.entries[key] = &DigestEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	if d.config.CountThreshold > 0 && len(d.entries) >= d.config.CountThreshold {
		d.flushLocked(false)
	}
}

// Pending returns the number of distinct entries not yet flushed.
func (d *Digest) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func digestKey(level, message string, fields map[string]interface{}, caller string) string {
	data := struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
		Caller  string                 `json:"caller"`
	}{level, message, fields, caller}

	b, _ := json.Marshal(data)
	return fmt.Sprintf("%x", sha256.Sum256(b))
}

func (d *Digest) periodicFlush() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.mu.Lock()
			d.flushLocked(false)
			d.mu.Unlock()
		case <-d.ctx.Done():
			return
		}
	}
}

// flushLocked ships pending entries. Caller holds d.mu.
func (d *Digest) flushLocked(wait bool) {
	if len(d.entries) == 0 || d.config.Publisher == nil {
		return
	}
	batch := make([]DigestEntry, 0, len(d.entries))
	for _, e := range d.entries {
		batch = append(batch, *e)
	}
	d.entries = make(map[string]*DigestEntry)

	send := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := d.config.Publisher.PublishMessage(ctx, d.config.Topic, batch); err != nil && d.config.OnPublishError != nil {
			d.config.OnPublishError(err)
		}
	}
	if wait {
		send()
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		send()
	}()
}

// Close stops the ticker and flushes what is left before returning.
func (d *Digest) Close() {
	d.cancel()
	d.mu.Lock()
	d.flushLocked(true)
	d.mu.Unlock()
	d.wg.Wait()
}
