// cmd/tools/agent-registry/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"agentscore-gateway/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.Int64("id", 0, "Agent ID (positive integer)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Weather Oracle)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "", "Category (e.g., data)")
	priceSats := addCmd.Int("priceSats", 0, "Invoice amount in sats (0 uses the gateway default)")
	addCmd.StringVar(&registryPath, "path", "configs/agent-registry.json", "Path to registry file")

	// Update command flags
	idUpdate := updateCmd.Int64("id", 0, "Agent ID to update")
	field := updateCmd.String("field", "", "Field to update (displayName, description, category, priceSats)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&registryPath, "path", "configs/agent-registry.json", "Path to registry file")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/agent-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd <= 0 || *displayName == "" {
			fmt.Println("Error: a positive id and a displayName are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		agent := registry.Agent{
			ID:          *idAdd,
			DisplayName: *displayName,
			Description: *description,
			Category:    *category,
			PriceSats:   *priceSats,
			Tags:        []string{},
		}
		if err := addAgent(&agent); err != nil {
			fmt.Printf("Error adding agent: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added agent %d (%s)\n", *idAdd, *displayName)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate <= 0 || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateAgent(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating agent: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated agent %d, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateCatalog(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func addAgent(agent *registry.Agent) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.AgentRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Agents:      []registry.Agent{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	if reg.Lookup(agent.ID) != nil {
		return fmt.Errorf("agent with ID %d already exists", agent.ID)
	}

	reg.Agents = append(reg.Agents, *agent)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	return saveRegistry(reg, registryPath)
}

func updateAgent(id int64, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	agent := reg.Lookup(id)
	if agent == nil {
		return fmt.Errorf("agent with ID %d not found", id)
	}

	switch field {
	case "displayName":
		agent.DisplayName = value
	case "description":
		agent.Description = value
	case "category":
		agent.Category = value
	case "priceSats":
		price, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid priceSats value: %w", err)
		}
		agent.PriceSats = price
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateCatalog() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Agents) == 0 {
		return fmt.Errorf("registry contains no agents")
	}

	if err := reg.Validate(); err != nil {
		return err
	}

	fmt.Printf("Registry validation passed. Found %d agents.\n", len(reg.Agents))
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.AgentRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

func help() {
	fmt.Print(`
Usage: agent-registry <command> [flags]

Commands:
  add      Add a new agent to the registry
  update   Update an existing agent's field
  validate Validate the registry file
  help     Show this help message

Examples:
  agent-registry add -id 1 -displayName "Weather Oracle" -description "Answers weather prompts" -category data -priceSats 25
  agent-registry update -id 1 -field priceSats -value 50
  agent-registry validate -path configs/agent-registry.json

Use 'agent-registry <command> -h' for more information about a command.

`)
}
