package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"piazza-qa/internal/config"
	"piazza-qa/internal/embed"
	"piazza-qa/internal/jobqueue"
	"piazza-qa/internal/llm"
	"piazza-qa/internal/qa"
	"piazza-qa/internal/retrieval"
	"piazza-qa/internal/store"
	"piazza-qa/internal/worker"
)

func main() {
	log.Println("=== QA Worker Starting ===")

	cassandraCfg := config.LoadCassandraConfig()
	redisCfg := config.LoadRedisConfig()
	llmCfg := config.LoadLLMConfig()
	workerCfg := config.LoadWorkerConfig()

	// Long-lived resources, acquired once and reused for every job.
	session, err := store.Connect(cassandraCfg)
	if err != nil {
		log.Fatalf("Failed to connect to Cassandra: %v", err)
	}
	defer session.Close()
	log.Println("Connected to Cassandra")

	queue, err := jobqueue.Connect(redisCfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer queue.Close()
	log.Println("Connected to Redis")

	log.Println("Loading embedding model (this may take a while)...")
	model, err := embed.Load()
	if err != nil {
		log.Fatalf("Failed to load embedding model: %v", err)
	}
	defer model.Close()
	log.Println("Embedding model loaded")

	chat := llm.NewClient(llmCfg)
	engine := retrieval.NewEngine(store.NewChunkIndex(session), model, chat, workerCfg.RetrievalLimit)
	pipeline := qa.NewPipeline(chat, engine)
	answers := store.NewAnswers(session)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("QA Worker ready, waiting for jobs...")
	worker.Run(ctx, queue, pipeline, answers, workerCfg.PopTimeout)
}
