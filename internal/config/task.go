package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Task describes one input to inspect.
type Task struct {
	// Input is a pcap file, or a raw payload dump when Raw is set.
	Input string `yaml:"input"`
	Raw   bool   `yaml:"raw"`

	// Ports restricts pcap replay to packets touching these TCP/UDP
	// ports. Empty means no filter. Ignored for raw inputs.
	Ports []uint16 `yaml:"ports"`
}

// TaskFile is a batch of inputs loaded from a YAML task list.
type TaskFile struct {
	Tasks []Task `yaml:"tasks"`
}

// LoadTasks parses a task list file.
func LoadTasks(path string) (*TaskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %s: %w", path, err)
	}

	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
	}

	if len(tf.Tasks) == 0 {
		return nil, fmt.Errorf("task file %s defines no tasks", path)
	}
	for i, task := range tf.Tasks {
		if task.Input == "" {
			return nil, fmt.Errorf("task %d has no input", i)
		}
	}

	return &tf, nil
}
