package waipu

import "time"

// Eligibility decides if the message sent at t should be deleted.
// *cutoff.Policy implements it.
type Eligibility interface {
	IsEligible(t time.Time) bool
}

// Filter returns messages that are eligible for deletion, in the same order.
func Filter(msgs []Message, p Eligibility) []Message {
	var out = make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if p.IsEligible(m.Date) {
			out = append(out, m)
		}
	}
	return out
}

func messageIDs(msgs []Message) []int {
	ids := make([]int, len(msgs))
	for i := range msgs {
		ids[i] = msgs[i].ID
	}
	return ids
}
