package main

import (
	"fmt"

	"value_copilot/pkg/core/prompt"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts [id]",
	Short: "List the prompt templates, or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := prompt.Get()
		if cfg.Prompts.Dir != "" {
			if _, err := prompt.LoadFromDirectory(registry, cfg.Prompts.Dir); err != nil {
				return err
			}
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			pt, err := registry.GetPrompt(args[0])
			if err != nil {
				return err
			}
			if pt.SystemPrompt != "" {
				fmt.Fprintf(out, "--- system ---\n%s\n", pt.SystemPrompt)
			}
			if pt.UserPromptTmpl != "" {
				fmt.Fprintf(out, "--- user ---\n%s\n", pt.UserPromptTmpl)
			}
			return nil
		}

		for _, id := range registry.ListPrompts() {
			pt, _ := registry.GetPrompt(id)
			fmt.Fprintf(out, "%-28s %-8s %s\n", id, pt.Category, pt.Name)
		}
		return nil
	},
}
