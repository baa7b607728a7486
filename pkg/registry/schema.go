// pkg/registry/schema.go
package registry

// AgentRegistry is the on-disk catalog of known agents and their pricing.
type AgentRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Agents      []Agent `json:"agents"`
}

type Agent struct {
	ID          int64    `json:"id"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	PriceSats   int      `json:"priceSats"`
	Tags        []string `json:"tags"`
}
