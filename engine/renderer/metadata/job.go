package metadata

/** Definition for jobs. Results are written into the channel, at most one value. */
type JobStart func(params interface{}, results chan<- interface{}) error

/** Definition for completion of a job. */
type JobOnComplete func(results <-chan interface{})

/**
 * @brief Determines which job queue a job uses. The high-priority queue is always
 * drained before the normal-priority queue.
 */
type JobPriority int

const (
	/** @brief A normal-priority job. Should be used for medium-priority tasks such as loading assets. */
	JOB_PRIORITY_NORMAL JobPriority = iota
	/** @brief The highest-priority job. Should be used sparingly, and only for time-critical operations.*/
	JOB_PRIORITY_HIGH
)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	Priority JobPriority
	/** @brief Invoked on a worker when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked on the worker when OnStart returns nil. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked on the worker when OnStart fails. Optional. */
	OnFailure JobOnComplete
	/** @brief Invoked after either outcome. Optional. */
	OnCompletionCallback func()
	/** @brief Data to be passed to the entry point upon execution. */
	InputParams interface{}
}
