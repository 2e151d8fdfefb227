package enforcer

import (
	"sync"
	"time"
)

// Status is the externally visible summary of the most recent pass,
// served by the status HTTP endpoint.
type Status struct {
	PassID         string    `json:"pass_id"`
	Weekday        string    `json:"weekday"`
	Block          string    `json:"block"`
	Rotation       string    `json:"rotation,omitempty"`
	Target         []string  `json:"target"`
	Removed        []string  `json:"removed"`
	LastPassAt     time.Time `json:"last_pass_at"`
	NextTransition time.Time `json:"next_transition"`
	LastError      string    `json:"last_error,omitempty"`
}

type passState struct {
	PassID   string
	Weekday  string
	Block    string
	Rotation string
	Target   []string
	Removed  []string
	At       time.Time
}

type statusStore struct {
	mu     sync.RWMutex
	status Status
}

func (s *statusStore) recordPass(p passState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.PassID = p.PassID
	s.status.Weekday = p.Weekday
	s.status.Block = p.Block
	s.status.Rotation = p.Rotation
	s.status.Target = append([]string(nil), p.Target...)
	s.status.Removed = append([]string(nil), p.Removed...)
	s.status.LastPassAt = p.At
	s.status.LastError = ""
}

func (s *statusStore) recordError(passID, weekday, block string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.PassID = passID
	s.status.Weekday = weekday
	s.status.Block = block
	s.status.LastError = err.Error()
}

func (s *statusStore) setNextTransition(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.NextTransition = t
}

func (s *statusStore) get() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.status
	out.Target = append([]string(nil), s.status.Target...)
	out.Removed = append([]string(nil), s.status.Removed...)
	return out
}
