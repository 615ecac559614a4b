package cli

import (
	"github.com/spf13/cobra"
)

var testConnCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "测试币安API与企业微信Webhook连通性",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().TestConnection(cmd.Context())
	},
}
