package main

import (
	"context"
	"log"
	"time"

	"piazza-qa/internal/config"
	"piazza-qa/internal/jobqueue"
	"piazza-qa/internal/monitor"
	"piazza-qa/internal/piazza"
	"piazza-qa/internal/store"
)

// courseForum adapts a logged-in Piazza client to the monitor's view of
// one course's feed.
type courseForum struct {
	client *piazza.Client
	limit  int
}

func (f *courseForum) Feed(ctx context.Context) ([]int, error) {
	return f.client.Feed(ctx, f.limit)
}

func (f *courseForum) Post(ctx context.Context, id int) (string, error) {
	return f.client.Post(ctx, id)
}

func main() {
	log.Println("=== Piazza Monitor Starting ===")

	cassandraCfg := config.LoadCassandraConfig()
	redisCfg := config.LoadRedisConfig()
	monitorCfg := config.LoadMonitorConfig()

	log.Printf("Poll interval: %v", monitorCfg.PollInterval)

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

	answers := store.NewAnswers(session)
	state := store.NewCourseState(session)

	ctx := context.Background()

	for {
		log.Printf("[%s] Starting poll cycle...", time.Now().Format("2006-01-02 15:04:05"))

		courses, err := store.FetchCourseConfigs(session)
		if err != nil {
			log.Printf("Error fetching courses: %v", err)
			time.Sleep(60 * time.Second)
			continue
		}
		log.Printf("Monitoring %d course(s)", len(courses))

		for _, course := range courses {
			if monitor.TooYoung(course, monitorCfg.MinCourseAge, time.Now()) {
				log.Printf("  Skipping %s - waiting for lectures to process", course.Course.ClassName)
				continue
			}
			pollCourse(ctx, course, answers, state, queue, monitorCfg.FeedLimit)
		}

		log.Printf("Poll cycle complete. Sleeping for %v...", monitorCfg.PollInterval)
		time.Sleep(monitorCfg.PollInterval)
	}
}

func pollCourse(ctx context.Context, course store.CourseConfig, answers *store.Answers, state *store.CourseState, queue *jobqueue.Queue, feedLimit int) {
	log.Printf("\nProcessing %s (%s)", course.Course.ClassName, course.NetworkID)

	client, err := piazza.Login(course.NetworkID, course.Email, course.Password)
	if err != nil {
		log.Printf("  Error logging in to Piazza: %v", err)
		return
	}

	forum := &courseForum{client: client, limit: feedLimit}
	queued, err := monitor.ProcessCourse(ctx, course.Course, forum, answers, state, queue)
	if err != nil {
		log.Printf("  Error processing course %s: %v", course.Course.ClassName, err)
		return
	}

	log.Printf("  Queued %d posts", queued)
}
