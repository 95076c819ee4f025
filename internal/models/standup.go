package models

// Standup describes a recurring prompt sent to the incoming role holder and
// broadcast to a channel.
type Standup struct {
	Name     string
	Channel  string
	Day      string
	Time     string
	Timezone string
	WaitTime int
	Users    []string
	Question string
}

// Participants returns the user IDs to prompt: the holder, plus the standup
// manager when that is a different person.
func Participants(holder Member, manager Member) []string {
	if manager.ID == "" || holder.ID == manager.ID {
		return []string{holder.ID}
	}
	return []string{holder.ID, manager.ID}
}
