package main

import (
	"context"
	"log"

	"github.com/gocql/gocql"

	"piazza-qa/internal/config"
	"piazza-qa/internal/embed"
	"piazza-qa/internal/events"
	"piazza-qa/internal/store"
	"piazza-qa/internal/transcript"
)

func main() {
	log.Println("=== Processor Starting ===")

	cassandraCfg := config.LoadCassandraConfig()
	kafkaCfg := config.LoadKafkaConfig()

	log.Println("Loading embedding model...")
	model, err := embed.Load()
	if err != nil {
		log.Fatalf("Failed to load embedding model: %v", err)
	}
	defer model.Close()
	log.Println("Embedding model loaded")

	session, err := store.Connect(cassandraCfg)
	if err != nil {
		log.Fatalf("Failed to connect to Cassandra: %v", err)
	}
	defer session.Close()
	log.Println("Connected to Cassandra")

	consumer := events.NewConsumer(kafkaCfg)
	defer consumer.Close()
	log.Printf("Consuming %s as %s", kafkaCfg.Topic, kafkaCfg.GroupID)

	ctx := context.Background()
	chunkingCfg := transcript.DefaultChunkingConfig()

	for {
		ev, err := consumer.Next(ctx)
		if err != nil {
			log.Printf("Error reading event: %v", err)
			continue
		}

		log.Printf("Processing transcript: %s", ev.URL)
		if err := processTranscript(session, model, chunkingCfg, ev); err != nil {
			log.Printf("Error processing %s: %v", ev.URL, err)
		}
	}
}

// processTranscript chunks one lecture and writes its embeddings and
// keyword postings. Re-processing the same URL overwrites the same rows,
// so duplicate events are harmless.
func processTranscript(session *gocql.Session, model *embed.Model, chunkingCfg transcript.ChunkingConfig, ev *events.TranscriptEvent) error {
	course := store.Course{ClassName: ev.ClassName, Professor: ev.Professor, Semester: ev.Semester}

	t, err := store.FetchTranscript(session, course, ev.URL)
	if err != nil {
		return err
	}
	if t.Status != store.StatusSuccess || t.TranscriptText == "" {
		log.Printf("  Skipping %s: no transcript text", ev.URL)
		return nil
	}

	frames := transcript.ParseSRT(t.TranscriptText)
	sentences := transcript.Sentences(frames, model.CountTokens)
	if len(sentences) == 0 {
		log.Printf("  Skipping %s: no sentences", ev.URL)
		return nil
	}

	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}
	embeddings, err := model.EmbedBatch(texts)
	if err != nil {
		return err
	}
	for i := range sentences {
		sentences[i].Embedding = embeddings[i]
	}

	chunks := chunkingCfg.Chunks(sentences)

	// Final stored embedding comes from the chunk text itself, not the
	// sentence mean used during chunking.
	chunkTexts := make([]string, len(chunks))
	for i, c := range chunks {
		chunkTexts[i] = c.Text
	}
	chunkEmbeddings, err := model.EmbedBatch(chunkTexts)
	if err != nil {
		return err
	}

	for i, c := range chunks {
		row := &store.Chunk{
			Course:           course,
			URL:              ev.URL,
			ChunkIndex:       c.ChunkIndex,
			ChunkText:        c.Text,
			Embedding:        chunkEmbeddings[i],
			TokenCount:       c.TokenCount,
			LectureTitle:     t.LectureTitle,
			LectureTimestamp: c.StartTime,
		}
		if err := store.InsertChunk(session, row); err != nil {
			return err
		}

		for _, term := range transcript.IndexTerms(c.Text) {
			if err := store.InsertKeywordPosting(session, term, course, ev.URL, c.ChunkIndex); err != nil {
				return err
			}
		}
	}

	log.Printf("  Indexed %d chunks for %s", len(chunks), ev.URL)
	return nil
}
