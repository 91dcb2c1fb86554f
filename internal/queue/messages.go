package queue

// QueueUpdateMsg is the payload published to the update and rewrite queues.
type QueueUpdateMsg struct {
	Message    string `json:"message"`
	GraphID    string `json:"graph_id"`
	UpdateText string `json:"update_text"`
}
