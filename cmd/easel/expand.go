package main

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/expand"
)

var (
	expandTemplateID int64
	expandLimit      int
	expandSelects    []string
	expandRandom     bool
	expandCount      int
	expandSeed       int64
)

var expandCmd = &cobra.Command{
	Use:   "expand [text]",
	Short: "Expand a template into prompts without generating images",
	Long: `Expand a template against the stored variable pools and print each
resulting prompt. Nothing is generated or saved.

Give the template text as an argument or point at a saved template
with --template.

Examples:
  easel expand "a {{animal}} in the {{place}}"
  easel expand --template 3 --limit 20
  easel expand "a {{animal}}" --select animal=cat,fox
  easel expand --template 3 --random --count 5 --seed 42`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selections, err := expand.ParseSelections(expandSelects)
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		var text string
		if len(args) > 0 {
			text = args[0]
		}
		if text == "" && expandTemplateID > 0 {
			p, err := env.store.GetPrompt(expandTemplateID)
			if err != nil {
				return err
			}
			text = p.PromptText
		}
		if text == "" {
			return errors.New("give the template text or --template")
		}

		var rng *rand.Rand
		if expandSeed != 0 {
			rng = rand.New(rand.NewSource(expandSeed))
		}
		expander := expand.NewExpander(env.store, rng)

		var seq *expand.Sequence
		if expandRandom {
			seq, err = expander.ExpandRandom(text, expandCount)
		} else {
			seq, err = expander.Expand(text, expand.Options{
				Limit:      expandLimit,
				Selections: selections,
			})
		}
		if err != nil {
			return err
		}

		for seq.Next() {
			ex := seq.Item()
			fmt.Printf("[%d/%d] %s\n", ex.Index, ex.Total, ex.Text)
			if len(ex.Missing) > 0 {
				fmt.Printf("  missing pools: %s\n", strings.Join(ex.Missing, ", "))
			}
		}
		return nil
	},
}

func init() {
	expandCmd.Flags().Int64Var(&expandTemplateID, "template", 0, "Saved template id to expand")
	expandCmd.Flags().IntVar(&expandLimit, "limit", 0, "Cap for all-combinations expansion (default "+strconv.Itoa(expand.DefaultLimit)+")")
	expandCmd.Flags().StringArrayVar(&expandSelects, "select", nil, "Value subset per variable, name=v1,v2 (repeatable)")
	expandCmd.Flags().BoolVar(&expandRandom, "random", false, "Resolve variables with random pool draws")
	expandCmd.Flags().IntVar(&expandCount, "count", 1, "Number of random expansions (with --random)")
	expandCmd.Flags().Int64Var(&expandSeed, "seed", 0, "Seed for reproducible random draws")

	rootCmd.AddCommand(expandCmd)
}
