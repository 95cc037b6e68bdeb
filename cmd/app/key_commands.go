package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/cmd/app/commands"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/app"
	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-encryption-key",
			Usage: "Generate a VAULT_ENCRYPTION_KEY, optionally wrapped by a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-provider",
					Usage: "KMS provider (localsecrets, gcpkms, awskms, azurekeyvault, hashivault)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "KMS key URI used to wrap the generated key",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				return commands.RunCreateEncryptionKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					os.Stdout,
					cmd.String("kms-provider"),
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
