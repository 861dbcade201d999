package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"moneytracker/internal/core"
	"moneytracker/internal/services"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Inspect categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories with their usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kindFlag, _ := cmd.Flags().GetString("type")
			activeOnly, _ := cmd.Flags().GetBool("active")

			var kind *core.Kind
			if kindFlag != "" {
				k, err := core.ParseKind(kindFlag)
				if err != nil {
					return err
				}
				kind = &k
			}

			repo, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			svc := services.NewCategoryService(repo)
			cats, err := svc.List(cmd.Context(), kind, activeOnly)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tNAME\tACTIVE\tUSED BY")
			for _, c := range cats {
				usage, err := svc.Usage(cmd.Context(), c.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%d\n", c.ID, c.Kind, c.Name, c.Active, usage)
			}
			return tw.Flush()
		},
	}
	list.Flags().String("type", "", "only show income or expense categories")
	list.Flags().Bool("active", false, "hide disabled categories")

	cmd.AddCommand(list)
	return cmd
}
