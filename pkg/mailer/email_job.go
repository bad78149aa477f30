package mailer

// Message is one rendered email. Text is the fallback body; HTML is optional.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
}

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Attempt counts deliveries so the worker can give up on poison jobs.
type EmailJob struct {
	Message
	Attempt int `json:"attempt,omitempty"`
}
