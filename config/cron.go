package config

// CronSchedules maps built-in job names to their cron expressions.
func CronSchedules() map[string]string {
	return map[string]string{
		"inventoryrebuild": GetEnv("IMPORT_SCHEDULE", "0 5 * * *"),
	}
}
