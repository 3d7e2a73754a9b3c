package main

import (
	"github.com/spf13/cobra"
)

func newPlaylistCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "playlist",
		Short: "regenerate the master playlist from the stored streams",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(nil)
			if err != nil {
				return err
			}
			if err := reg.RegeneratePlaylist(); err != nil {
				return err
			}
			a.logger.Info("playlist regenerated", "path", a.panel.PlaylistPath)
			return nil
		},
	}
}
