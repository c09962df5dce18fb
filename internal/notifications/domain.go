package notifications

import (
	"encoding/json"
	"strings"
)

// Notification is one message addressed to the signed-in user.
type Notification struct {
	ID        int64  `json:"id"`
	Type      string `json:"notificationType,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
	Status    string `json:"status,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type wireNotification struct {
	ID        int64  `json:"id"`
	Type      string `json:"notificationType"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	Read      *bool  `json:"read"`
	IsRead    *bool  `json:"isRead"`
	CreatedAt string `json:"createdAt"`
	SentAt    string `json:"sentAt"`
}

// UnmarshalJSON derives Read from read, isRead or a READ status.
func (n *Notification) UnmarshalJSON(data []byte) error {
	var w wireNotification
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = Notification{
		ID:        w.ID,
		Type:      w.Type,
		Subject:   w.Subject,
		Message:   w.Message,
		Status:    w.Status,
		CreatedAt: w.CreatedAt,
	}
	if n.CreatedAt == "" {
		n.CreatedAt = w.SentAt
	}
	switch {
	case w.Read != nil:
		n.Read = *w.Read
	case w.IsRead != nil:
		n.Read = *w.IsRead
	default:
		n.Read = strings.EqualFold(w.Status, "READ")
	}
	return nil
}

// Unread counts the unread notifications in list.
func Unread(list []Notification) int {
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}
