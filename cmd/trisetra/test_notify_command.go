package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trisetra/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ctx.notifier(cmd).Notify(cmd.Context(), notifications.Notification{
				Event:   notifications.EventTest,
				Title:   "Test notification",
				Message: "Notifications are working",
			})
			if err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			if strings.TrimSpace(ctx.configValue().Notifications.NtfyTopic) == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "ntfy_topic is not set; notification shown locally only")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
