// Command bookforge assembles a finished book record into distributable
// artifacts: a reflowable e-book archive, a paginated print document, and
// a distribution bundle.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bookforge/bookforge/internal/assets"
	"github.com/bookforge/bookforge/internal/book"
	"github.com/bookforge/bookforge/internal/bundle"
	"github.com/bookforge/bookforge/internal/config"
	"github.com/bookforge/bookforge/internal/epub"
	"github.com/bookforge/bookforge/internal/layout"
	"github.com/bookforge/bookforge/internal/render"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs, built once by the root
// command before any subcommand runs.
type app struct {
	settings *config.Settings
	logger   *charmlog.Logger
}

func newRootCmd() *cobra.Command {
	var (
		a          app
		configPath string
		outputDir  string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "bookforge",
		Short: "Assemble generated books into print and e-book artifacts",
		Long: `bookforge takes a finished book record (JSON) and produces
portable distribution artifacts from it: a reflowable EPUB archive,
a fixed-layout A4 PDF assembled from page captures, and a submission
bundle with the e-book, cover art and metadata listing.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if outputDir != "" {
				settings.OutputDir = outputDir
			}
			if err := os.MkdirAll(settings.OutputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			a.settings = settings
			a.logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
				ReportTimestamp: true,
				TimeFormat:      "15:04:05",
				Level:           level,
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML settings file")
	root.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "directory for produced artifacts (overrides config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newPackCmd(&a))
	root.AddCommand(newRenderCmd(&a))
	root.AddCommand(newBundleCmd(&a))
	return root
}

func newPackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pack book.json",
		Short: "Package a finished book into an e-book archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := book.Load(args[0])
			if err != nil {
				return err
			}
			w, err := newEPUBWriter(a)
			if err != nil {
				return err
			}
			path := filepath.Join(a.settings.OutputDir, book.SanitizeFilename(b.Title)+".epub")
			return w.PackToFile(cmd.Context(), b, path)
		},
	}
}

func newRenderCmd(a *app) *cobra.Command {
	var pagesDir string

	cmd := &cobra.Command{
		Use:   "render book.json",
		Short: "Assemble captured page bitmaps into the paginated document",
		Long: `render lays the book out into its fixed page sequence and
assembles pre-captured page bitmaps (one image file per page, in
filename order) into a single A4 PDF.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := book.Load(args[0])
			if err != nil {
				return err
			}
			ras, err := render.NewImageDirRasterizer(pagesDir)
			if err != nil {
				return err
			}
			r, err := render.NewRenderer(render.RendererConfig{
				Rasterizer: ras,
				Logger:     a.logger,
			})
			if err != nil {
				return err
			}
			path := filepath.Join(a.settings.OutputDir, book.SanitizeFilename(b.Title)+".pdf")
			return r.RenderToFile(cmd.Context(), layout.Layout(b), path)
		},
	}

	cmd.Flags().StringVar(&pagesDir, "pages", "", "directory of captured page bitmaps, one per page")
	_ = cmd.MarkFlagRequired("pages")
	return cmd
}

func newBundleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bundle book.json",
		Short: "Produce the distribution bundle (e-book, cover, metadata)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := book.Load(args[0])
			if err != nil {
				return err
			}
			w, err := newEPUBWriter(a)
			if err != nil {
				return err
			}
			epubData, err := w.Pack(cmd.Context(), b)
			if err != nil {
				return err
			}
			bd, err := bundle.NewBuilder(bundle.Config{
				Fetcher: assets.NewFetcher(),
				Logger:  a.logger,
			})
			if err != nil {
				return err
			}
			_, err = bd.Write(cmd.Context(), b, epubData, a.settings.OutputDir)
			return err
		},
	}
}

func newEPUBWriter(a *app) (*epub.Writer, error) {
	return epub.NewWriter(epub.WriterConfig{
		Fetcher:          assets.NewFetcher(),
		EmbedFonts:       a.settings.EmbedFonts,
		FetchConcurrency: a.settings.FetchConcurrency,
		Logger:           a.logger,
	})
}
