package main

import (
	"github.com/spf13/cobra"

	"ats-go/internal/ats"
	"ats-go/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		withKey, _ := cmd.Flags().GetBool("unlock")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var dc ats.DecryptionContext
		if withKey {
			if dc, err = unlock(a); err != nil {
				return err
			}
		}

		cfg := a.Config().Server
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		return web.NewServer(a.Service(), a, a.Logger(), cfg, dc).Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().Bool("unlock", false, "Prompt for the passphrase so encrypted documents can be downloaded")
}
