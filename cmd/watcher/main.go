package main

import (
	"context"
	"log"
	"time"

	"github.com/gocql/gocql"

	"piazza-qa/internal/config"
	"piazza-qa/internal/discovery"
	"piazza-qa/internal/frontier"
	"piazza-qa/internal/store"
)

func main() {
	log.Println("=== Watcher Starting ===")

	cassandraCfg := config.LoadCassandraConfig()
	redisCfg := config.LoadRedisConfig()
	watcherCfg := config.LoadWatcherConfig()

	log.Printf("Configuration:")
	log.Printf("  Cassandra hosts: %v", cassandraCfg.Hosts)
	log.Printf("  Keyspace: %s", cassandraCfg.Keyspace)
	log.Printf("  Poll interval: %v", watcherCfg.PollInterval)
	log.Printf("  Parsers directory: %s", watcherCfg.ParsersDir)
	log.Printf("  Redis: %s:%s", redisCfg.Host, redisCfg.Port)

	session, err := store.Connect(cassandraCfg)
	if err != nil {
		log.Fatalf("Failed to connect to Cassandra: %v", err)
	}
	defer session.Close()
	log.Println("Connected to Cassandra")

	tracker, err := frontier.Connect(redisCfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer tracker.Close()
	log.Println("Connected to Redis")

	ctx := context.Background()

	// Greedy polling: sleep only for whatever is left of the interval.
	for {
		cycleStart := time.Now()

		syncParsers(session, watcherCfg.ParsersDir)
		runParsers(ctx, tracker, watcherCfg.ParsersDir)

		elapsed := time.Since(cycleStart)
		if elapsed < watcherCfg.PollInterval {
			remaining := watcherCfg.PollInterval - elapsed
			log.Printf("Sleeping for %v until next cycle\n", remaining)
			time.Sleep(remaining)
		} else {
			log.Printf("Cycle took longer than poll interval, running immediately\n")
		}
	}
}

func syncParsers(session *gocql.Session, parsersDir string) {
	log.Printf("[%s] Syncing parsers from Cassandra...", time.Now().Format("2006-01-02 15:04:05"))

	if err := discovery.Sync(session, parsersDir); err != nil {
		log.Printf("Error syncing parsers: %v", err)
	}
}

func runParsers(ctx context.Context, tracker *frontier.Tracker, parsersDir string) {
	log.Printf("[%s] Running parsers...", time.Now().Format("2006-01-02 15:04:05"))

	names, err := discovery.ListParsers(parsersDir)
	if err != nil {
		log.Printf("Error listing parsers: %v", err)
		return
	}
	if len(names) == 0 {
		log.Println("No parsers to run")
		return
	}

	totalLectures := 0
	newLectures := 0

	for _, name := range names {
		lectures, err := discovery.RunParser(name, parsersDir)
		if err != nil {
			log.Printf("  Error executing %s: %v", name, err)
			continue
		}

		log.Printf("  %s returned %d lecture(s)", name, len(lectures))
		totalLectures += len(lectures)

		added, err := tracker.Discover(ctx, lectures)
		if err != nil {
			log.Printf("  Error adding lectures to frontier: %v", err)
			continue
		}
		newLectures += added
	}

	log.Printf("Summary: %d total lectures, %d new, %d already seen\n", totalLectures, newLectures, totalLectures-newLectures)
}
