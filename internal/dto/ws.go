package dto

type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WSThreadUpdated struct {
	ThreadID ID     `json:"thread_id"`
	Thread   Thread `json:"thread"`
}

type WSReplyEvent struct {
	ThreadID ID    `json:"thread_id"`
	Reply    Reply `json:"reply"`
	// TempID is set when a confirmed reply replaces an optimistic one.
	TempID ID `json:"temp_id,omitempty"`
}
