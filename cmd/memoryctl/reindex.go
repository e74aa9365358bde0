package main

import (
	"context"
	"fmt"

	"project-memory-be/internal/repository/specification"
	"project-memory-be/pkg/pipeline"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func reindexCMD() *cobra.Command {
	var documentId string
	var from string

	var reindex = &cobra.Command{
		Use:   "reindex",
		Short: "Run the memory pipeline for one document synchronously",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(documentId)
			if err != nil {
				return fmt.Errorf("invalid --document: %w", err)
			}
			stage, err := pipeline.ParseStage(from)
			if err != nil {
				return err
			}

			c, err := openContainer()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := context.Background()
			doc, err := c.UowFactory.NewUnitOfWork(ctx).DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
			if err != nil {
				return fmt.Errorf("load document: %w", err)
			}
			if doc == nil {
				return fmt.Errorf("document %s not found", id)
			}
			ownerId, err := projectOwner(ctx, c.UowFactory, doc.ProjectId)
			if err != nil {
				return err
			}

			color.Cyan("Reindexing %q (%s) from %s", doc.Title, doc.Id, stage)
			ran, err := c.PipelineService.RunChain(ctx, pipeline.Job{
				DocumentId: doc.Id,
				ProjectId:  doc.ProjectId,
				UserId:     ownerId,
				Stage:      stage,
				Origin:     "memoryctl",
			})
			for _, s := range ran {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", s)
			}
			if err != nil {
				return err
			}
			color.Green("Done: %d stages", len(ran))
			return nil
		},
	}
	reindex.Flags().StringVar(&documentId, "document", "", "document id")
	reindex.Flags().StringVar(&from, "from", string(pipeline.StageSummarize), "stage to start from")
	_ = reindex.MarkFlagRequired("document")

	return reindex
}
