package mailer

// NotificationJob is the JSON payload put on the RabbitMQ queue for resident notifications.
// Template selects a template set under pkg/mailer/templates; Data feeds it.
type NotificationJob struct {
	To       string         `json:"to"`
	Name     string         `json:"name,omitempty"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
	// Attempt counts failed sends so far; producers leave it zero.
	Attempt int `json:"attempt,omitempty"`
}

// Valid reports whether the job has the fields the worker needs.
func (j NotificationJob) Valid() bool {
	return j.To != "" && j.Template != ""
}
