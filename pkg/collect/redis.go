// Package collect provides the state and output sources the verification
// engine fetches from: device state published to Redis, show-command
// output captured over SSH, and both kinds of capture read from files.
package collect

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/newtverify/pkg/intent"
	"github.com/newtron-network/newtverify/pkg/state"
	"github.com/newtron-network/newtverify/pkg/util"
)

// DefaultStateDB is the Redis database device state is published to.
const DefaultStateDB = 0

// RedisStateSource reads device state published to Redis. Each reported
// object is a hash at "<domain>|<hostname>|<object>", e.g.
// "trunk|SW1|Gi0/24", whose fields are the record's dotted paths.
type RedisStateSource struct {
	client *redis.Client
}

// NewRedisStateSource creates a source for the Redis server at addr.
func NewRedisStateSource(addr string, db int) *RedisStateSource {
	return &RedisStateSource{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
	}
}

// Connect tests the connection.
func (s *RedisStateSource) Connect(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the connection.
func (s *RedisStateSource) Close() error {
	return s.client.Close()
}

// StateKey returns the Redis key of one reported object.
func StateKey(d intent.Domain, hostname, object string) string {
	return strings.Join([]string{string(d), hostname, object}, intent.KeySeparator)
}

type target struct {
	host   string
	domain intent.Domain
}

// targets lists the distinct (host, domain) pairs a batch reads, in batch
// order.
func targets(intents []intent.Intent) []target {
	seen := make(map[target]bool)
	var out []target
	for _, in := range intents {
		if in == nil {
			continue
		}
		for _, h := range in.Hosts() {
			t := target{host: strings.TrimSpace(h), domain: in.Domain()}
			if t.host == "" || seen[t] {
				continue
			}
			if strings.Contains(t.host, intent.KeySeparator) {
				util.WithHost(t.host).Warnf("hostname contains %q, no state can be published for it", intent.KeySeparator)
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// FetchState reads the state of every device the batch targets. Keys are
// listed with SCAN, then all hashes are read in one pipeline. Devices that
// published nothing are simply absent from the result.
func (s *RedisStateSource) FetchState(ctx context.Context, intents []intent.Intent) ([]*state.ActualState, error) {
	var keys []string
	for _, t := range targets(intents) {
		found, err := scanKeys(ctx, s.client, StateKey(t.domain, globEscape(t.host), "*"), 100)
		if err != nil {
			return nil, fmt.Errorf("scanning state of %s: %w", t.host, err)
		}
		util.WithHost(t.host).Debugf("%d %s objects published", len(found), t.domain)
		keys = append(keys, found...)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGetAll(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("reading device state: %w", err)
	}

	byKey := make(map[state.Key]*state.ActualState)
	var states []*state.ActualState
	for i, k := range keys {
		d, host, ok := splitStateKey(k)
		if !ok {
			continue
		}
		vals := cmds[i].Val()
		if len(vals) == 0 {
			continue
		}
		sk := state.Key{Hostname: host, Domain: d}
		st := byKey[sk]
		if st == nil {
			st = &state.ActualState{Hostname: host, Domain: d}
			byKey[sk] = st
			states = append(states, st)
		}
		st.Records = append(st.Records, state.Record(vals))
	}
	return states, nil
}

// Publish writes st to Redis, replacing what the device previously
// published for the domain. Records are stored under their position.
func (s *RedisStateSource) Publish(ctx context.Context, st *state.ActualState) error {
	if strings.TrimSpace(st.Hostname) == "" || strings.Contains(st.Hostname, intent.KeySeparator) {
		return fmt.Errorf("cannot publish state for hostname %q", st.Hostname)
	}
	old, err := scanKeys(ctx, s.client, StateKey(st.Domain, globEscape(st.Hostname), "*"), 100)
	if err != nil {
		return fmt.Errorf("scanning state of %s: %w", st.Hostname, err)
	}

	pipe := s.client.TxPipeline()
	if len(old) > 0 {
		pipe.Del(ctx, old...)
	}
	for i, rec := range st.Records {
		if len(rec) == 0 {
			continue
		}
		args := make([]interface{}, 0, len(rec)*2)
		for k, v := range rec {
			args = append(args, k, v)
		}
		pipe.HSet(ctx, StateKey(st.Domain, st.Hostname, strconv.Itoa(i)), args...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publishing state of %s: %w", st.Hostname, err)
	}
	return nil
}

// splitStateKey splits off the domain and hostname; the object part may
// itself contain the separator.
func splitStateKey(key string) (intent.Domain, string, bool) {
	parts := strings.SplitN(key, intent.KeySeparator, 3)
	if len(parts) != 3 {
		return "", "", false
	}
	d := intent.Domain(parts[0])
	if !d.Valid() || parts[1] == "" {
		return "", "", false
	}
	return d, parts[1], true
}

// scanKeys lists keys matching pattern with cursor-based SCAN.
func scanKeys(ctx context.Context, client *redis.Client, pattern string, countHint int64) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, next, err := client.Scan(ctx, cursor, pattern, countHint).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// globEscape escapes the Redis glob metacharacters in s.
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
