package cron_config

type Config struct {
	// Heartbeat log line, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
}
