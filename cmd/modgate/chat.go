package main

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/gigdesk/modgate/db"
	"github.com/gigdesk/modgate/gateway"
	"github.com/gigdesk/modgate/internal/clifmt"
	"github.com/gigdesk/modgate/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive moderation session",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		ctx := cmd.Context()

		gdb, err := db.Open(ctx, dbConfigFromViper())
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		if err := db.AutoMigrate(gdb); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		recordStore := store.NewGormStore(gdb)

		client, model, err := llmClientFromViper()
		if err != nil {
			return err
		}
		notifier, err := notifierFromViper()
		if err != nil {
			return fmt.Errorf("connect notifier: %w", err)
		}
		auditSink, err := auditSinkFromViper()
		if err != nil {
			return fmt.Errorf("open audit sink: %w", err)
		}
		if auditSink != nil {
			defer auditSink.Close()
		}

		gw := gateway.New(recordStore,
			&gateway.LLMInference{Client: client, Model: model},
			gateway.WithLogger(logger),
			gateway.WithNotifier(notifier),
			gateway.WithAudit(auditSink),
			gateway.WithActor(actorName()),
		)
		sess := gateway.NewSession()

		fmt.Println(clifmt.Headerf("modgate — moderation chat"))
		fmt.Println(clifmt.Dim("Actions always ask for confirmation. Type \"undo\" to reverse the last one, ctrl-d to quit."))

		sc := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(clifmt.Dim("> "))
			if !sc.Scan() {
				break
			}
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			reply, err := gw.HandleTurn(ctx, sess, line)
			if err != nil {
				logger.Error("turn failed", "error", err)
			}
			fmt.Println(reply)
		}
		return sc.Err()
	},
}

func actorName() string {
	if v := strings.TrimSpace(viper.GetString("gateway.actor")); v != "" {
		return v
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "admin"
}
