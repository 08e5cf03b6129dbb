package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tws",
		Short:         "tweetsweep (tws): list and bulk-delete your own posts",
		Long:          "tws stores session cookie material per profile, discovers the platform's private API endpoints at runtime, lists your posts, and deletes the ones you pick with a confirmation gate and paced requests.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSessionCmd(app),
		newDiscoverCmd(app),
		newListCmd(app),
		newDeleteCmd(app),
	)

	return rootCmd
}
