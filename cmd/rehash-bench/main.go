// Command rehash-bench drives a single pkg/hashtable.Table through an
// insert/lookup/delete workload and logs its resize and rehash-step
// behavior, as a small demonstration of the library rather than a
// production tool.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/grafana/rehashtable/pkg/hashtable"
)

type cli struct {
	Keys       int    `help:"Number of keys to insert." default:"100000"`
	DeleteOdds int    `help:"Delete every Nth key after the insert pass; 0 disables deletion." default:"3" name:"delete-every"`
	Policy     string `help:"Resize policy to run under: allow, avoid, or forbid." default:"allow" enum:"allow,avoid,forbid"`
	HashFunc   string `help:"Hash function for demo keys: xxhash or fnv1a." default:"xxhash" enum:"xxhash,fnv1a"`
	Config     string `help:"Optional viper config file overriding the flags above." type:"existingfile" optional:""`
}

type record struct {
	id  uuid.UUID
	key string
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("rehash-bench"),
		kong.Description("Exercises pkg/hashtable with a synthetic workload."),
	)

	if c.Config != "" {
		if err := loadConfigFile(&c); err != nil {
			kctx.FatalIfErrorf(err)
		}
	}

	logger := log.NewLogfmtLogger(os.Stdout)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	reg := prometheus.NewRegistry()
	metrics := hashtable.NewMetrics(reg, "rehash_bench")

	policy, err := parsePolicy(c.Policy)
	kctx.FatalIfErrorf(err)

	hashFn := hashtable.HashString
	if c.HashFunc == "fnv1a" {
		hashFn = hashtable.HashStringFNV
	}

	cb := hashtable.Callbacks[string, *record]{
		Hash:   hashFn,
		Equal:  func(a, b string) bool { return a == b },
		GetKey: func(r *record) string { return r.key },
		RehashingStarted: func() {
			level.Info(logger).Log("msg", "rehash started")
		},
		RehashingCompleted: func() {
			level.Info(logger).Log("msg", "rehash completed")
		},
	}

	hctx := hashtable.NewContext([16]byte(uuid.New()))
	hctx.SetPolicy(policy)

	tb := hashtable.New[string, *record, struct{}](cb, hctx,
		hashtable.WithLogger[string, *record, struct{}](logger),
		hashtable.WithMetrics[string, *record, struct{}](metrics),
	)

	start := time.Now()
	for i := 0; i < c.Keys; i++ {
		key := fmt.Sprintf("key-%d", i)
		tb.Add(&record{id: uuid.New(), key: key})
	}
	insertElapsed := time.Since(start)

	level.Info(logger).Log("msg", "insert pass complete", "keys", c.Keys, "elapsed", insertElapsed, "size", tb.Size(), "longest_probing_chain", tb.LongestProbingChain())

	if c.DeleteOdds > 0 {
		deleted := 0
		for i := 0; i < c.Keys; i += c.DeleteOdds {
			if tb.Delete(fmt.Sprintf("key-%d", i)) {
				deleted++
			}
		}
		level.Info(logger).Log("msg", "delete pass complete", "deleted", deleted, "size", tb.Size())
	}

	if _, err := tb.TryExpand(context.Background(), tb.Size()*2); err != nil {
		level.Warn(logger).Log("msg", "try-expand failed", "err", err)
	}

	found := 0
	for i := 0; i < c.Keys; i++ {
		if _, ok := tb.Find(fmt.Sprintf("key-%d", i)); ok {
			found++
		}
	}
	level.Info(logger).Log("msg", "lookup pass complete", "found", found, "size", tb.Size())
}

func parsePolicy(s string) (hashtable.ResizePolicy, error) {
	switch s {
	case "allow":
		return hashtable.PolicyAllow, nil
	case "avoid":
		return hashtable.PolicyAvoid, nil
	case "forbid":
		return hashtable.PolicyForbid, nil
	default:
		return 0, fmt.Errorf("unknown policy %q", s)
	}
}

func loadConfigFile(c *cli) error {
	v := viper.New()
	v.SetConfigFile(c.Config)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if v.IsSet("keys") {
		c.Keys = v.GetInt("keys")
	}
	if v.IsSet("delete_every") {
		c.DeleteOdds = v.GetInt("delete_every")
	}
	if v.IsSet("policy") {
		c.Policy = v.GetString("policy")
	}
	if v.IsSet("hash_func") {
		c.HashFunc = v.GetString("hash_func")
	}
	return nil
}
