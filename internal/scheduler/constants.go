package scheduler

const (
	LogMsgJobScheduled = "Scheduled periodic job"
	LogMsgPoolStopped  = "Worker pool stopped, unscheduling job"
	LogMsgTickSkipped  = "Worker queue full, skipping scheduled run"
)
