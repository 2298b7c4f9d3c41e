package simulation

import (
	"time"
)

type RadioMessage struct {
	Timestamp time.Time
	Callsign  string
	Message   string
	IsUrgent  bool
}

func (s *Simulation) AddRadioMessage(callsign string, message string, isUrgent bool) {
	msg := RadioMessage{
		Timestamp: time.Now(),
		Callsign:  callsign,
		Message:   message,
		IsUrgent:  isUrgent,
	}

	s.radioMu.Lock()
	defer s.radioMu.Unlock()
	s.radioLog = append(s.radioLog, msg)

	if len(s.radioLog) > s.maxRadioLogSize {
		s.radioLog = s.radioLog[len(s.radioLog)-s.maxRadioLogSize:]
	}
}

// RadioLog returns a copy of the retained messages, oldest first.
func (s *Simulation) RadioLog() []RadioMessage {
	s.radioMu.Lock()
	defer s.radioMu.Unlock()
	return append([]RadioMessage(nil), s.radioLog...)
}
