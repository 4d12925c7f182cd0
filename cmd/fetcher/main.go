package main

import (
	"context"
	"log"
	"time"

	"piazza-qa/internal/config"
	"piazza-qa/internal/events"
	"piazza-qa/internal/frontier"
	"piazza-qa/internal/ingest"
	"piazza-qa/internal/store"
)

func main() {
	log.Println("=== Fetcher Starting ===")

	cassandraCfg := config.LoadCassandraConfig()
	redisCfg := config.LoadRedisConfig()
	kafkaCfg := config.LoadKafkaConfig()
	fetcherCfg := config.LoadFetcherConfig()

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

	publisher := events.NewPublisher(kafkaCfg)
	defer publisher.Close()

	ingestor := ingest.New(session, publisher, fetcherCfg)

	ctx := context.Background()
	log.Printf("Waiting for lectures on queue: %s", redisCfg.Frontier)

	for {
		lecture, err := tracker.Pop(ctx, 60*time.Second)
		if err != nil {
			log.Printf("Error popping frontier: %v", err)
			continue
		}
		if lecture == nil {
			continue
		}

		log.Printf("Processing URL: %s", lecture.URL)
		if err := ingestor.Ingest(ctx, lecture); err != nil {
			log.Printf("Error ingesting %s: %v", lecture.URL, err)
		}
	}
}
