package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Mailbox processing, every 15 minutes. Empty disables scheduled runs.
	CronScheduleProcessEmails string `env:"CRON_SCHEDULE_PROCESS_EMAILS" envDefault:"0 */15 * * * *"`
}
