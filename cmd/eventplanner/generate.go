package main

import (
	"context"
	"encoding/json"
	"io"

	"eventplanner/internal/app"
	"eventplanner/internal/generate"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run one generation step against a stored event",
	}

	cmd.AddCommand(
		newGenerateEventDataCmd(setup),
		newGenerateDocumentCmd(setup),
		newGeneratePostCmd(setup),
	)
	return cmd
}

type setupFunc func() (*app.App, error)

func newGenerateEventDataCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "eventdata <eventId>",
		Short: "Generate schedule, budget, checklist and flow diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(setup, func(a *app.App) error {
				out, err := a.Generate.EventData(context.Background(), generate.EventDataInput{EventID: args[0]})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

func newGenerateDocumentCmd(setup setupFunc) *cobra.Command {
	var kind, theme string

	cmd := &cobra.Command{
		Use:   "document <eventId>",
		Short: "Generate an invitation or itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(setup, func(a *app.App) error {
				doc, err := a.Generate.Document(context.Background(), generate.DocumentInput{
					EventID: args[0],
					Kind:    kind,
					Theme:   theme,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), doc)
			})
		},
	}

	cmd.Flags().StringVar(&kind, "type", "invitation", "Document type: invitation or itinerary")
	cmd.Flags().StringVar(&theme, "theme", "", "Design theme")
	return cmd
}

func newGeneratePostCmd(setup setupFunc) *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "post <eventId>",
		Short: "Generate a social media post or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(setup, func(a *app.App) error {
				post, err := a.Generate.SocialPost(context.Background(), generate.SocialPostInput{
					EventID:  args[0],
					Platform: platform,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), post)
			})
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "twitter, instagram, facebook, linkedin or email")
	return cmd
}

func withApp(setup setupFunc, fn func(a *app.App) error) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
