package app

import (
	"io"

	"github.com/spf13/cobra"
)

// Command はアプリケーションのサブコマンドを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。引数なしの場合の既定。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandReset は全マイグレーションを巻き戻してから再適用することを示す。
	CommandReset Command = "reset"
	// CommandSeed はサンプルユーザーとタスクを投入することを示す。
	CommandSeed Command = "seed"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// NewRootCommand はtodoapiのルートコマンドを生成する。
// ログはwに出力する。サブコマンドを省略した場合はserveとして動作する。
func NewRootCommand(w io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "todoapi",
		Short:         "Multi-user todo API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithConfig(w, CommandServe, runServe)
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   string(CommandServe),
			Short: "Start the HTTP API server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithConfig(w, CommandServe, runServe)
			},
		},
		&cobra.Command{
			Use:   string(CommandMigrate),
			Short: "Apply all pending database migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithConfig(w, CommandMigrate, runMigrate)
			},
		},
		&cobra.Command{
			Use:   string(CommandReset),
			Short: "Roll back every migration and apply them again (drops all data)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithConfig(w, CommandReset, runReset)
			},
		},
		&cobra.Command{
			Use:   string(CommandSeed),
			Short: "Replace all data with sample users and todos",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithConfig(w, CommandSeed, runSeed)
			},
		},
		&cobra.Command{
			Use:   string(CommandHealthcheck),
			Short: "Check that the local server answers GET /health",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				// 軽量サブコマンドのため、フル初期化をスキップする
				return runHealthcheck(healthcheckPort())
			},
		},
	)

	return root
}
