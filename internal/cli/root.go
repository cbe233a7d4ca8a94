package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/gemini-video-compare/internal/app"
	"github.com/shouni/gemini-video-compare/internal/config"
	"github.com/shouni/gemini-video-compare/internal/logger"
	"github.com/shouni/gemini-video-compare/pkg/gemini"
)

const version = "0.1.0"

// ClientFactory は設定から Gemini クライアントを作成します。
type ClientFactory func(ctx context.Context, cfg gemini.Config) (*gemini.Client, error)

// NewRootCommand は videodiff のルートコマンドを作成します。
func NewRootCommand(newClient ClientFactory) *cobra.Command {
	var req app.Request

	cmd := &cobra.Command{
		Use:     "videodiff --before FILE --after FILE",
		Short:   "Compare before/after videos with Gemini and list damage",
		Version: version,
		Long: `Uploads a "before" and an "after" video to the Gemini File API, waits until
both are processed, and asks the model to compare them and enumerate damage.

The API key is read from GEMINI_API_KEY (a .env file in the working directory
is loaded when present).`,
		Example: `  $ videodiff --before before.MOV --after after.MOV
  $ videodiff --before a.mp4 --after b.mp4 --mime-type video/mp4 --message "Which side is torn?"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if _, err := logger.Setup(cfg.Log, cmd.ErrOrStderr()); err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := newClient(ctx, gemini.Config{
				APIKey:       cfg.APIKey,
				Model:        cfg.Model,
				PollInterval: cfg.PollInterval,
				PollTimeout:  cfg.PollTimeout,
				MaxRetries:   cfg.SendMaxRetries,
				InitialDelay: cfg.SendInitialDelay,
				MaxDelay:     cfg.SendMaxDelay,
				Output:       cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			return app.Run(ctx, client, req)
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate(fmt.Sprintf("videodiff version %s\n", version))

	flags := cmd.Flags()
	flags.StringVar(&req.BeforePath, "before", "", "path to the \"before\" video")
	flags.StringVar(&req.AfterPath, "after", "", "path to the \"after\" video")
	flags.StringVar(&req.MIMEType, "mime-type", "video/quicktime", "media type sent with both uploads")
	flags.StringVarP(&req.Message, "message", "m", gemini.DefaultComparisonPrompt, "message sent after the seeded history")
	flags.BoolVar(&req.Cleanup, "cleanup", false, "delete the uploaded files when finished")
	_ = cmd.MarkFlagRequired("before")
	_ = cmd.MarkFlagRequired("after")

	return cmd
}

// Execute はシグナルで中断可能なコンテキストでルートコマンドを実行します。
func Execute(ctx context.Context) error {
	return NewRootCommand(gemini.NewClient).ExecuteContext(ctx)
}
