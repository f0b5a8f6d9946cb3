//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
)

// SeedState loads a JSON seed file into a Redis database. The format is
// { "domain": { "hostname": { "object": { "field": "value", ... } } } };
// each object becomes a hash at "domain|hostname|object".
func SeedState(t *testing.T, addr string, db int, seedFile string) {
	t.Helper()

	data, err := os.ReadFile(seedFile)
	if err != nil {
		t.Fatalf("reading seed file %s: %v", seedFile, err)
	}

	var domains map[string]map[string]map[string]map[string]string
	if err := json.Unmarshal(data, &domains); err != nil {
		t.Fatalf("parsing seed file %s: %v", seedFile, err)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	defer client.Close()

	ctx := context.Background()
	for domain, hosts := range domains {
		for host, objects := range hosts {
			for object, fields := range objects {
				WriteObject(t, ctx, client, domain+"|"+host+"|"+object, fields)
			}
		}
	}
}

// WriteObject writes one hash.
func WriteObject(t *testing.T, ctx context.Context, client *redis.Client, key string, fields map[string]string) {
	t.Helper()

	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	if err := client.HSet(ctx, key, args...).Err(); err != nil {
		t.Fatalf("seeding %s: %v", key, err)
	}
}

// FlushDB flushes a specific Redis database.
func FlushDB(t *testing.T, addr string, db int) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	defer client.Close()

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing DB %d: %v", db, err)
	}
}

// SetupStateDB flushes the test database and seeds it with state.json.
func SetupStateDB(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	FlushDB(t, addr, TestStateDB)
	SeedState(t, addr, TestStateDB, SeedPath("state.json"))
}
