package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wikivault/internal/config"
	"github.com/wikivault/internal/db"
	"github.com/wikivault/internal/render"
	"github.com/wikivault/internal/service"
)

func main() {
	// A missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "wikivault",
		Short:        "Versioned wiki content and attachment store",
		SilenceUsage: true,
	}
	root.AddCommand(migrateCommand(), seedCommand())

	if err := root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := db.Init(cfg.DatabasePath); err != nil {
				return err
			}
			logrus.Infof("schema up to date at %s", cfg.DatabasePath)
			return nil
		},
	}
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample articles for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := db.Init(cfg.DatabasePath); err != nil {
				return err
			}

			editor := service.NewEditorService(db.DB)
			versions := service.NewVersionService(db.DB)
			markdown := render.NewMarkdown()

			samples := []service.CreateArticleInput{
				{
					Name:    "start",
					Title:   "Getting Started",
					Source:  "# Welcome\n\nThis wiki stores every edit as an immutable version.",
					Tags:    []string{"help", "_system"},
					Comment: "seed data",
				},
				{
					Category: "guides",
					Name:     "attachments",
					Title:    "Working with Attachments",
					Source:   "Attachments are scoped per article and soft deleted.",
					Tags:     []string{"help"},
					Comment:  "seed data",
				},
			}

			for _, sample := range samples {
				article, err := editor.CreateArticle(sample)
				if err != nil {
					logrus.Warnf("skipping %q: %v", sample.Name, err)
					continue
				}

				latest, err := versions.Latest(article.ID)
				if err != nil {
					return err
				}
				if latest != nil {
					if err := versions.RenderVersion(latest.ID, markdown); err != nil {
						return err
					}
				}
				logrus.Infof("created %s", article.FullName())
			}

			return nil
		},
	}
}
