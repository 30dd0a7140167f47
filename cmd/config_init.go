package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/factlens/factlens/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml template with every default value",
	// The template must work without a loadable config, so skip the root
	// PersistentPreRunE.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "config.yaml"

		if !configInitForce {
			if _, err := os.Stat(path); err == nil {
				return eris.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}

		tree := defaultsTree()
		data, err := yaml.Marshal(tree)
		if err != nil {
			return eris.Wrap(err, "marshal config template")
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrap(err, "write config template")
		}

		fmt.Printf("Wrote %s. Fill in gemini.keys before running verify.\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config.yaml")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// defaultsTree converts the flat dotted default keys into the nested map
// yaml.Marshal needs, and seeds the credential fields with placeholders.
func defaultsTree() map[string]any {
	tree := map[string]any{}
	for key, val := range config.Defaults() {
		parts := strings.Split(key, ".")
		node := tree
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = val
	}

	// Credential fields have no defaults; seed them so the template shows
	// every knob.
	gemini, _ := tree["gemini"].(map[string]any)
	if gemini != nil {
		gemini["keys"] = "Paste_Your_Google_Gemini_Key_Here"
		gemini["master_key"] = ""
	}
	fallback, _ := tree["fallback"].(map[string]any)
	if fallback != nil {
		fallback["groq_key"] = ""
		fallback["anthropic_key"] = ""
	}
	if tavilyNode, ok := tree["tavily"].(map[string]any); ok {
		tavilyNode["key"] = ""
	}
	if jinaNode, ok := tree["jina"].(map[string]any); ok {
		jinaNode["key"] = ""
	}

	return tree
}
