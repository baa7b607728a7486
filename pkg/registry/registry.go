// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*AgentRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg AgentRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Lookup returns the agent with the given id, or nil if unknown.
func (r *AgentRegistry) Lookup(id int64) *Agent {
	for i := range r.Agents {
		if r.Agents[i].ID == id {
			return &r.Agents[i]
		}
	}
	return nil
}

// PriceFor returns the agent's invoice amount, or the fallback when the
// agent is unknown or carries no price.
func (r *AgentRegistry) PriceFor(id int64, fallback int) int {
	if r == nil {
		return fallback
	}
	if agent := r.Lookup(id); agent != nil && agent.PriceSats > 0 {
		return agent.PriceSats
	}
	return fallback
}

// Validate reports the first structural problem in the catalog.
func (r *AgentRegistry) Validate() error {
	if r.Version == "" {
		return fmt.Errorf("registry missing version")
	}
	seen := make(map[int64]bool, len(r.Agents))
	for _, a := range r.Agents {
		if a.ID <= 0 {
			return fmt.Errorf("agent %q: id must be positive", a.DisplayName)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate agent id %d", a.ID)
		}
		seen[a.ID] = true
		if a.DisplayName == "" {
			return fmt.Errorf("agent %d: missing displayName", a.ID)
		}
		if a.PriceSats < 0 {
			return fmt.Errorf("agent %d: negative priceSats", a.ID)
		}
	}
	return nil
}
