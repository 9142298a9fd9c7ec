// pkg/capture/redis.go

package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"AveBody/pkg/chunk"
)

// captures is a hash from record key to the JSON encoded record.
const captures = "captures"

type redisSink struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Sink = &redisSink{}

func init() {
	Register("redis", newRedisSink)
	Register("rediss", newRedisSink)
}

func newRedisSink(driver, addr string, conf *Config) (Sink, error) {
	url := driver + "://" + addr
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %s", url, err)
	}
	if opt.Password == "" && os.Getenv("REDIS_PASSWORD") != "" {
		opt.Password = os.Getenv("REDIS_PASSWORD")
	}
	opt.MaxRetries = conf.Retries
	opt.MinRetryBackoff = time.Millisecond * 100
	opt.MaxRetryBackoff = time.Second * 10
	opt.ReadTimeout = time.Second * 30
	opt.WriteTimeout = time.Second * 5
	return &redisSink{rdb: redis.NewClient(opt), prefix: conf.Prefix, ttl: conf.TTL}, nil
}

func (rs *redisSink) Name() string {
	return "redis"
}

func (rs *redisSink) hashKey() string {
	return rs.prefix + captures
}

func (rs *redisSink) bodyKey(key string) string {
	return rs.prefix + "b" + key
}

// Put stores the body under its own key so it can expire, and the metadata in the hash.
func (rs *redisSink) Put(ctx context.Context, r *Record) error {
	meta := *r
	meta.Body = nil
	data, err := json.Marshal(&meta)
	if err != nil {
		return errors.Wrap(err, "json")
	}
	_, err = rs.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, rs.bodyKey(r.Key()), r.Body, rs.ttl)
		pipe.HSet(ctx, rs.hashKey(), r.Key(), data)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "put %s", r.Key())
	}
	logger.Debugf("captured %d bytes of %s into redis", r.Size, r.Key())
	return nil
}

func (rs *redisSink) Get(ctx context.Context, stream string, d chunk.Direction) (*Record, error) {
	key := stream + ":" + d.String()
	data, err := rs.rdb.HGet(ctx, rs.hashKey(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(ErrNotFound, "%s %s", stream, d)
	}
	if err != nil {
		return nil, err
	}
	var r Record
	if err = json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "parse record %s", key)
	}
	r.Body, err = rs.rdb.Get(ctx, rs.bodyKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		// the body expired, keep the metadata
		return &r, nil
	}
	return &r, err
}

func (rs *redisSink) List(ctx context.Context) ([]*Record, error) {
	vals, err := rs.rdb.HGetAll(ctx, rs.hashKey()).Result()
	if err != nil {
		return nil, err
	}
	records := make([]*Record, 0, len(vals))
	for key, v := range vals {
		var r Record
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			logger.Warnf("invalid record %s: %s", key, err)
			continue
		}
		records = append(records, &r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key() < records[j].Key() })
	return records, nil
}

func (rs *redisSink) Close() error {
	return rs.rdb.Close()
}
