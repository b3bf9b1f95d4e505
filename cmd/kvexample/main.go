package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/leafsii/kvkeywords/internal/config"
	"github.com/leafsii/kvkeywords/internal/log"
	"github.com/leafsii/kvkeywords/pkg/facade"

	_ "github.com/leafsii/kvkeywords/pkg/kv/memory"
	_ "github.com/leafsii/kvkeywords/pkg/kv/redis"
)

var (
	flags = flag.NewFlagSet("kvexample", flag.ExitOnError)
	key   = flags.String("key", "user:info:1", "sorted set to populate")
)

func main() {
	flags.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewSugar(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	f := facade.New(logger)
	conn, err := f.Connect(ctx, cfg.Store.ConnectOptions())
	if err != nil {
		logger.Fatalw("Failed to connect", "error", err)
	}
	defer conn.Close()

	if err := run(ctx, f, conn, *key, os.Stdout); err != nil {
		logger.Fatalw("Example failed", "error", err)
	}
}

// run fills a sorted set out of score order and prints it back ranked
func run(ctx context.Context, f *facade.Facade, conn *facade.Connection, key string, out io.Writer) error {
	members := []struct {
		member string
		score  float64
	}{
		{"name", 1},
		{"age", 2},
		{"phone", 4},
		{"email", 3},
	}

	for _, m := range members {
		if _, err := f.AddScoredMember(ctx, conn, key, m.member, m.score); err != nil {
			return err
		}
	}

	ranked, err := f.RangeScoredMembers(ctx, conn, key, 0, 10)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, ranked)
	return nil
}
