package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIntercompanyIntegrity schedules the intercompany balance scan.
	TaskIntercompanyIntegrity = "interunit:integrity"
)

// IntercompanyIntegrityPayload configures the scope of the balance scan.
type IntercompanyIntegrityPayload struct {
	// Scope selects which unit pairs to inspect: "all" or a single unit ID.
	Scope string `json:"scope"`
}

// NewIntercompanyIntegrityTask creates an Asynq task for the balance scan.
func NewIntercompanyIntegrityTask(scope string) (*asynq.Task, error) {
	if scope == "" {
		scope = "all"
	}
	body, err := json.Marshal(IntercompanyIntegrityPayload{Scope: scope})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIntercompanyIntegrity, body, asynq.Queue(QueueDefault)), nil
}
