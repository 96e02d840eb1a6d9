package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/batch"
	"github.com/jackzampolin/easel/internal/expand"
	"github.com/jackzampolin/easel/internal/imagefile"
	"github.com/jackzampolin/easel/internal/provider"
)

var (
	genTemplateID int64
	genLimit      int
	genSelects    []string
	genRandom     bool
	genCount      int
	genSeed       int64
	genSize       string
	genQuality    string
	genStyle      string
	genModel      string
	genDryRun     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [text]",
	Short: "Expand a template and generate an image per expansion",
	Long: `Expand a template and generate an image for every expansion.

The template comes from the positional argument or --template. Combination
mode enumerates value combinations up to --limit; --random draws --count
independent random renderings instead.

Images land in the configured images directory and every render is
recorded in the library. Without an API key the mock provider renders
placeholder images, so the whole flow works offline.

Examples:
  easel generate "a {{animal}} in the {{place}}"
  easel generate --template 3 --size 1792x1024 --quality hd
  easel generate "a {{animal}}" --random --count 4
  easel generate --template 3 --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		selections, err := expand.ParseSelections(genSelects)
		if err != nil {
			return err
		}

		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		var text string
		if len(args) == 1 {
			text = args[0]
		}
		if text == "" && genTemplateID > 0 {
			p, err := env.store.GetPrompt(genTemplateID)
			if err != nil {
				return err
			}
			text = p.PromptText
		}
		if text == "" {
			return errors.New("give the template text or --template")
		}

		prov := provider.New(env.cfg.EffectiveProvider(), env.cfg.ToImageClientConfig(), env.logger)
		imagesDir := env.cfg.Images.Dir
		if imagesDir == "" {
			imagesDir = env.home.ImagesPath()
		}
		files := imagefile.New(imagesDir, env.logger)

		runner, err := batch.NewRunner(batch.Config{
			Store:    env.store,
			Provider: prov,
			Files:    files,
			Logger:   env.logger,
		})
		if err != nil {
			return err
		}

		// Progress goes to stderr so the report on stdout stays parseable
		progress := func(index, total int) {
			fmt.Fprintf(os.Stderr, "[%d/%d] generating...\n", index, total)
		}
		if genDryRun {
			progress = nil
		}

		report, err := runner.Run(ctx, text, batch.Options{
			Limit:      genLimit,
			Selections: selections,
			Random:     genRandom,
			Count:      genCount,
			Seed:       genSeed,
			Size:       genSize,
			Quality:    genQuality,
			Style:      genStyle,
			Model:      genModel,
			DryRun:     genDryRun,
		}, progress)
		if err != nil {
			if report == nil {
				return err
			}
			// Cancelled mid-run; show the partial report before failing.
			_ = api.Output(report)
			return err
		}
		return api.Output(report)
	},
}

func init() {
	generateCmd.Flags().Int64Var(&genTemplateID, "template", 0, "Stored template ID to render")
	generateCmd.Flags().IntVar(&genLimit, "limit", 0, "Max expansions, default "+strconv.Itoa(expand.DefaultLimit))
	generateCmd.Flags().StringArrayVar(&genSelects, "select", nil, "Pin values, name=v1,v2 (repeatable)")
	generateCmd.Flags().BoolVar(&genRandom, "random", false, "Draw random values instead of enumerating")
	generateCmd.Flags().IntVar(&genCount, "count", 1, "Renderings to draw with --random")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "Seed for reproducible random draws")
	generateCmd.Flags().StringVar(&genSize, "size", "", "Image size, e.g. 1024x1024")
	generateCmd.Flags().StringVar(&genQuality, "quality", "", "Image quality, e.g. standard or hd")
	generateCmd.Flags().StringVar(&genStyle, "style", "", "Image style, e.g. vivid or natural")
	generateCmd.Flags().StringVar(&genModel, "model", "", "Override the configured model")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Expand and report without generating")

	rootCmd.AddCommand(generateCmd)
}
