package models

import "slices"

// Service is a catalog entry: an external service and the tasks it exposes.
type Service struct {
	Name        string   `json:"name"`
	Server      string   `json:"server,omitempty"`
	InputTopic  string   `json:"inputTopic,omitempty"`
	OutputTopic string   `json:"outputTopic,omitempty"`
	Tasks       []string `json:"tasks"`
}

// HasTask reports whether the service exposes the named task.
func (s *Service) HasTask(task string) bool {
	return slices.Contains(s.Tasks, task)
}
