// pkg/capture/sink.go

package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"AveBody/pkg/chunk"
	"AveBody/pkg/utils"
)

var logger = utils.GetLogger("avebody")

// Record is one finalized body.
type Record struct {
	Stream    string
	Direction string
	Size      int
	Body      []byte
	Time      time.Time
}

func (r *Record) Key() string {
	return r.Stream + ":" + r.Direction
}

func NewRecord(stream string, d chunk.Direction, body []byte) *Record {
	return &Record{
		Stream:    stream,
		Direction: d.String(),
		Size:      len(body),
		Body:      body,
		Time:      utils.Now(),
	}
}

// Sink stores finalized bodies.
type Sink interface {
	Name() string
	Put(ctx context.Context, r *Record) error
	Get(ctx context.Context, stream string, d chunk.Direction) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	Close() error
}

// Config for sinks.
type Config struct {
	Retries int
	Prefix  string        // prepended to every key
	TTL     time.Duration // 0 keeps records forever
}

type Creator func(driver, addr string, conf *Config) (Sink, error)

var sinks = make(map[string]Creator)

func Register(name string, register Creator) {
	sinks[name] = register
}

// NewSink creates a sink from a URL such as memory:// or redis://host:6379/1.
func NewSink(uri string, conf *Config) (Sink, error) {
	if !strings.Contains(uri, "://") {
		uri = "redis://" + uri
	}
	p := strings.Index(uri, "://")
	driver := uri[:p]
	f, ok := sinks[driver]
	if !ok {
		return nil, fmt.Errorf("invalid capture driver: %s", driver)
	}
	if conf == nil {
		conf = &Config{}
	}
	return f(driver, uri[p+3:], conf)
}
