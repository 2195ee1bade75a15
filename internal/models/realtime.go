package models

import "time"

// Realtime topics. A websocket client joins the topics it wants to follow;
// the broker publishes every committed lifecycle event to one or more topics.
const (
	topicComplaintPrefix = "complaint_"
	topicUserPrefix      = "user_"
	topicDivisionPrefix  = "division_"
)

func ComplaintTopic(complaintID string) string { return topicComplaintPrefix + complaintID }
func UserTopic(userID string) string           { return topicUserPrefix + userID }
func DivisionTopic(division string) string     { return topicDivisionPrefix + division }

// Event names on the wire.
const (
	EventComplaintUpdated = "complaint_updated"
	EventNewComplaint     = "new_complaint"
	EventNotification     = "notification"
)

// Event is the envelope published to the realtime layer after a committed
// transition. Data holds one of the typed payloads below.
type Event struct {
	Topic string      `json:"topic"`
	Name  string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ComplaintUpdate is pushed to the per-complaint topic on every transition.
type ComplaintUpdate struct {
	ComplaintID string    `json:"complaintId"`
	Status      Status    `json:"status"`
	Action      Action    `json:"action"`
	Actor       string    `json:"actor,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ComplaintCreated is pushed to the division topic when a citizen files a
// complaint in that division.
type ComplaintCreated struct {
	ComplaintID string   `json:"complaintId"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Location    Location `json:"location"`
}

// Notification is a direct message for one user's topic.
type Notification struct {
	Message     string `json:"message"`
	Severity    string `json:"severity"` // "info", "success", "warning"
	ComplaintID string `json:"complaintId"`
}

const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
)
