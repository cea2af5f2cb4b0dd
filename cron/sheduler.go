package cron

import (
	"log"

	"github.com/robfig/cron/v3"

	"problemsolving.GO/config"
)

// Schedule returns the cron expression of a job, preferring the one configured in the environment.
func Schedule(name string, j Job) string {
	if s, ok := config.CronSchedules()[name]; ok && s != "" {
		return s
	}
	return j.Schedule
}

func StartCron() *cron.Cron {
	c := cron.New()
	for name, j := range Jobs() {
		run := j.Run
		sched := Schedule(name, j)
		_, err := c.AddFunc(sched, func() { run() })
		if err != nil {
			log.Fatalf("Failed to register job %s: %v", name, err)
		}
		log.Printf("[cron] %s scheduled at %q", name, sched)
	}
	c.Start()
	return c
}
