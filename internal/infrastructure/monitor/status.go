package monitor

import "time"

type Status struct {
	Backend   string    `json:"backend"`
	Storage   bool      `json:"storage"`
	Redis     bool      `json:"redis"`
	Rabbit    bool      `json:"rabbit"`
	LastCheck time.Time `json:"last_check"`
}
